package ledger

import (
	"strconv"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
)

// DisplayRow — строка списка навыков для дашборда.
type DisplayRow struct {
	ID              string       `json:"id"`
	Level           int          `json:"level"`
	Skill           models.Skill `json:"skill"`
	MarkedForDelete bool         `json:"markedForDelete"`
	IsNew           bool         `json:"isNew"`
}

// Project собирает отображаемый список: сохранённые строки с наложенными
// правками и пометками удаления, затем отложенные создания как временные
// строки. Чистая функция, безопасна на каждый рендер; строки не теряются
// и не дублируются.
func Project(snapshot []models.ProfileSkillRow, l *Ledger, catalog []models.Skill) []DisplayRow {
	byID := make(map[int]models.Skill, len(catalog))
	for _, s := range catalog {
		byID[s.ID] = s
	}

	rows := make([]DisplayRow, 0, len(snapshot)+len(l.creates))

	for _, row := range snapshot {
		display := DisplayRow{
			ID:              strconv.Itoa(row.ID),
			Level:           row.Level,
			Skill:           row.Skill,
			MarkedForDelete: l.deletes[row.ID],
		}

		if patch, ok := l.updates[row.ID]; ok {
			if patch.Level != nil {
				display.Level = *patch.Level
			}
			if patch.SkillID != nil {
				display.Skill = catalogSkill(byID, *patch.SkillID)
			}
		}

		rows = append(rows, display)
	}

	for _, cr := range l.creates {
		rows = append(rows, DisplayRow{
			ID:    cr.TempID.String(),
			Level: cr.Level,
			Skill: catalogSkill(byID, cr.SkillID),
			IsNew: true,
		})
	}

	return rows
}

// catalogSkill достаёт метаданные навыка из каталога; для неизвестного id
// возвращается заглушка с этим id, чтобы строка не пропала из списка.
func catalogSkill(byID map[int]models.Skill, skillID int) models.Skill {
	if meta, ok := byID[skillID]; ok {
		return meta
	}
	return models.Skill{ID: skillID, Name: "Skill"}
}
