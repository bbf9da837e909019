package ledger

import (
	"math"
	"sort"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

// Patch — накопленное частичное изменение сохранённой строки.
// Повторные правки перезаписывают поле: действует последняя.
type Patch struct {
	Level   *int
	SkillID *int
}

// Empty сообщает, что после фильтрации в patch не осталось полей.
func (p Patch) Empty() bool {
	return p.Level == nil && p.SkillID == nil
}

// Create — отложенное создание строки.
type Create struct {
	TempID  RowID
	SkillID int
	Level   int
}

// Update — запись очереди обновлений в порядке первых правок.
type Update struct {
	ID    int
	Patch Patch
}

// Ledger — несохранённые намерения одной сессии редактирования.
// Мутации синхронные и не трогают сеть; владеет им ровно один вызывающий
// (синхронизация — забота сервиса).
type Ledger struct {
	updates map[int]*Patch
	order   []int
	deletes map[int]bool
	creates []Create
}

// New создаёт пустой леджер.
func New() *Ledger {
	l := &Ledger{}
	l.Reset()
	return l
}

// Reset полностью очищает леджер после коммита или явного сброса.
func (l *Ledger) Reset() {
	l.updates = make(map[int]*Patch)
	l.order = nil
	l.deletes = make(map[int]bool)
	l.creates = nil
}

// Empty сообщает, что сохранять нечего.
func (l *Ledger) Empty() bool {
	return len(l.updates) == 0 && len(l.deletes) == 0 && len(l.creates) == 0
}

// Counts возвращает размеры очередей для индикации в интерфейсе.
func (l *Ledger) Counts() (creates, updates, deletes int) {
	return len(l.creates), len(l.updates), len(l.deletes)
}

// ClampLevel приводит произвольное значение уровня к целому из [0,100].
// NaN и бесконечности считаются нулём.
func ClampLevel(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// effectiveSkill возвращает текущий навык строки с учётом отложенной правки.
func (l *Ledger) effectiveSkill(row models.ProfileSkillRow) int {
	if patch, ok := l.updates[row.ID]; ok && patch.SkillID != nil {
		return *patch.SkillID
	}
	return row.Skill.ID
}

// skillTaken проверяет уникальность навыка среди неудалённых сохранённых
// строк и отложенных созданий, исключая строку exclude.
func (l *Ledger) skillTaken(snapshot []models.ProfileSkillRow, skillID int, exclude RowID) bool {
	for _, row := range snapshot {
		if !exclude.IsTemp() && row.ID == exclude.Persisted() {
			continue
		}
		if l.deletes[row.ID] {
			continue
		}
		if l.effectiveSkill(row) == skillID {
			return true
		}
	}
	for _, cr := range l.creates {
		if cr.TempID == exclude {
			continue
		}
		if cr.SkillID == skillID {
			return true
		}
	}
	return false
}

// StageLevelEdit ставит в очередь правку уровня. Для временной строки
// переписывается само отложенное создание, в updates она не попадает.
func (l *Ledger) StageLevelEdit(id RowID, level float64) {
	lvl := ClampLevel(level)

	if id.IsTemp() {
		for i := range l.creates {
			if l.creates[i].TempID == id {
				l.creates[i].Level = lvl
			}
		}
		return
	}

	l.patchFor(id.Persisted()).Level = &lvl
}

// StageLinkEdit ставит в очередь смену навыка строки. Дубликат навыка
// отклоняется сразу, леджер при этом не меняется.
func (l *Ledger) StageLinkEdit(snapshot []models.ProfileSkillRow, id RowID, skillID int) error {
	if skillID > 0 && l.skillTaken(snapshot, skillID, id) {
		return apperror.ErrDuplicateSkill
	}

	if id.IsTemp() {
		for i := range l.creates {
			if l.creates[i].TempID == id {
				l.creates[i].SkillID = skillID
			}
		}
		return nil
	}

	patch := l.patchFor(id.Persisted())
	if skillID > 0 {
		patch.SkillID = &skillID
	} else {
		// Сброс навыка не отправляется в бэкенд: поле просто убирается из patch.
		patch.SkillID = nil
	}
	return nil
}

// StageDelete помечает сохранённую строку на удаление (повторный вызов
// снимает пометку). Временная строка удаляется из очереди созданий целиком.
func (l *Ledger) StageDelete(id RowID) {
	if id.IsTemp() {
		kept := l.creates[:0]
		for _, cr := range l.creates {
			if cr.TempID != id {
				kept = append(kept, cr)
			}
		}
		l.creates = kept
		return
	}

	rowID := id.Persisted()
	if l.deletes[rowID] {
		delete(l.deletes, rowID)
	} else {
		l.deletes[rowID] = true
	}
}

// StageCreate ставит в очередь создание новой строки и возвращает её
// временный идентификатор.
func (l *Ledger) StageCreate(snapshot []models.ProfileSkillRow, skillID int, level float64) (RowID, error) {
	if skillID <= 0 {
		return RowID{}, apperror.New(apperror.ErrCodeValidation, "сначала выберите навык")
	}
	if l.skillTaken(snapshot, skillID, RowID{}) {
		return RowID{}, apperror.ErrDuplicateSkill
	}

	tempID := NewTempID()
	l.creates = append(l.creates, Create{
		TempID:  tempID,
		SkillID: skillID,
		Level:   ClampLevel(level),
	})
	return tempID, nil
}

// patchFor возвращает patch строки, создавая его при первой правке.
func (l *Ledger) patchFor(rowID int) *Patch {
	if patch, ok := l.updates[rowID]; ok {
		return patch
	}
	patch := &Patch{}
	l.updates[rowID] = patch
	l.order = append(l.order, rowID)
	return patch
}

// Deletes возвращает помеченные на удаление строки. Порядок между собой не
// специфицирован, сортировка нужна только для детерминизма коммита.
func (l *Ledger) Deletes() []int {
	out := make([]int, 0, len(l.deletes))
	for id := range l.deletes {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Creates возвращает очередь созданий в порядке добавления.
func (l *Ledger) Creates() []Create {
	out := make([]Create, len(l.creates))
	copy(out, l.creates)
	return out
}

// Updates возвращает очередь обновлений в порядке первых правок.
func (l *Ledger) Updates() []Update {
	out := make([]Update, 0, len(l.order))
	for _, id := range l.order {
		if patch, ok := l.updates[id]; ok {
			out = append(out, Update{ID: id, Patch: *patch})
		}
	}
	return out
}

// IsDeleted сообщает, помечена ли сохранённая строка на удаление.
func (l *Ledger) IsDeleted(rowID int) bool {
	return l.deletes[rowID]
}
