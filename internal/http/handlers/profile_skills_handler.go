package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ledgerpkg "github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/ledger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/service"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// ProfileSkillsHandler обслуживает навыки профиля: прямые CRUD-операции
// плюс отложенное редактирование (stage/commit/reset) через SkillsService.
type ProfileSkillsHandler struct {
	client *strapi.Client
	skills *service.SkillsService
}

func NewProfileSkillsHandler(client *strapi.Client, skills *service.SkillsService) *ProfileSkillsHandler {
	return &ProfileSkillsHandler{client: client, skills: skills}
}

// resolveSession определяет пользователя и его профиль для текущего запроса.
// id пользователя берётся из claims cookie, при их отсутствии — у бэкенда.
func (h *ProfileSkillsHandler) resolveSession(c *gin.Context) (token string, userID, profileID int, err error) {
	token, err = currentToken(c)
	if err != nil {
		return "", 0, 0, err
	}

	userID = claimedUserID(c)
	if userID == 0 {
		me, meErr := h.client.Me(c.Request.Context(), token)
		if meErr != nil {
			return "", 0, 0, meErr
		}
		userID = me.ID
	}

	profileID = h.skills.ProfileFor(userID)
	if profileID == 0 {
		profile, findErr := h.client.FindMyProfile(c.Request.Context(), token, userID)
		if findErr != nil {
			return "", 0, 0, findErr
		}
		if profile == nil {
			return "", 0, 0, apperror.ErrProfileNotFound
		}
		profileID = profile.ID
	}
	return token, userID, profileID, nil
}

func (h *ProfileSkillsHandler) renderView(c *gin.Context, token string, userID, profileID int, extra gin.H) {
	catalog, err := h.client.ListSkills(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	rows, pending, err := h.skills.View(c.Request.Context(), token, userID, profileID, catalog)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"ok": true, "rows": rows, "pending": pending}
	for k, v := range extra {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}

// List обрабатывает GET /api/profile-skills: строки с наложенными
// несохранёнными правками и счётчики ожидающих операций.
func (h *ProfileSkillsHandler) List(c *gin.Context) {
	token, userID, profileID, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderView(c, token, userID, profileID, nil)
}

type stageRequest struct {
	Op    string   `json:"op" binding:"required"`
	ID    string   `json:"id"`
	Skill int      `json:"skill"`
	Level *float64 `json:"level"`
}

// Stage обрабатывает POST /api/profile-skills/stage: одна отложенная правка.
func (h *ProfileSkillsHandler) Stage(c *gin.Context) {
	token, userID, profileID, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "укажите операцию (op)"))
		return
	}

	extra := gin.H{}
	switch req.Op {
	case "create":
		level := 0.0
		if req.Level != nil {
			level = *req.Level
		}
		rowID, err := h.skills.StageCreate(c.Request.Context(), token, userID, profileID, req.Skill, level)
		if err != nil {
			respondError(c, err)
			return
		}
		extra["id"] = rowID.String()
	case "level":
		if req.Level == nil {
			respondError(c, apperror.New(apperror.ErrCodeValidation, "укажите уровень навыка"))
			return
		}
		rowID, err := ledgerpkg.ParseRowID(req.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := h.skills.StageLevelEdit(c.Request.Context(), token, userID, profileID, rowID, *req.Level); err != nil {
			respondError(c, err)
			return
		}
	case "link":
		rowID, err := ledgerpkg.ParseRowID(req.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := h.skills.StageLinkEdit(c.Request.Context(), token, userID, profileID, rowID, req.Skill); err != nil {
			respondError(c, err)
			return
		}
	case "delete":
		rowID, err := ledgerpkg.ParseRowID(req.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := h.skills.StageDelete(c.Request.Context(), token, userID, profileID, rowID); err != nil {
			respondError(c, err)
			return
		}
	default:
		respondError(c, apperror.New(apperror.ErrCodeValidation, "неизвестная операция: "+req.Op))
		return
	}

	h.renderView(c, token, userID, profileID, extra)
}

// Commit обрабатывает POST /api/profile-skills/commit: применяет всю пачку
// правок к бэкенду и возвращает отчёт вместе с перечитанным состоянием.
func (h *ProfileSkillsHandler) Commit(c *gin.Context) {
	token, userID, profileID, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.skills.Commit(c.Request.Context(), token, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	extra := gin.H{"report": report}
	if !report.Ok() {
		extra["ok"] = false
		extra["error"] = "часть изменений не сохранилась, проверьте список навыков"
	}
	h.renderView(c, token, userID, profileID, extra)
}

// Reset обрабатывает POST /api/profile-skills/reset: отбрасывает правки
// и перечитывает строки с бэкенда.
func (h *ProfileSkillsHandler) Reset(c *gin.Context) {
	token, userID, profileID, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}

	h.skills.Discard(userID)
	h.renderView(c, token, userID, profileID, nil)
}

type createRowRequest struct {
	DeveloperProfile int      `json:"developer_profile"`
	Skill            int      `json:"skill" binding:"required"`
	Level            *float64 `json:"level"`
}

// Create обрабатывает POST /api/profile-skills: немедленное создание строки
// в обход отложенных правок.
func (h *ProfileSkillsHandler) Create(c *gin.Context) {
	token, userID, profileID, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req createRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "сначала выберите навык"))
		return
	}
	if req.DeveloperProfile != 0 {
		profileID = req.DeveloperProfile
	}

	level := 0.0
	if req.Level != nil {
		level = *req.Level
	}

	row, err := h.client.CreateProfileSkill(c.Request.Context(), token, profileID, req.Skill, ledgerpkg.ClampLevel(level))
	if err != nil {
		respondError(c, err)
		return
	}

	// Прямое изменение делает серверную сессию правок неактуальной.
	h.skills.Discard(userID)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": row})
}

// Update обрабатывает PATCH /api/profile-skills/:id. Идентификатор может
// быть числовым id или documentId, отсутствующие поля не трогаются.
func (h *ProfileSkillsHandler) Update(c *gin.Context) {
	token, userID, _, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		body = map[string]any{}
	}
	if data, ok := body["data"].(map[string]any); ok {
		for k, v := range data {
			if _, exists := body[k]; !exists {
				body[k] = v
			}
		}
	}

	var patch strapi.ProfileSkillPatch
	if raw, exists := body["level"]; exists {
		n, _ := asFloat(raw)
		level := ledgerpkg.ClampLevel(n)
		patch.Level = &level
	}
	if raw, exists := body["skill"]; exists {
		if n, ok := asFloat(raw); ok && n > 0 {
			skillID := int(n)
			patch.SkillID = &skillID
		}
	}

	if err := h.client.UpdateProfileSkill(c.Request.Context(), token, c.Param("id"), patch); err != nil {
		respondError(c, err)
		return
	}

	h.skills.Discard(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete обрабатывает DELETE /api/profile-skills/:id.
func (h *ProfileSkillsHandler) Delete(c *gin.Context) {
	token, userID, _, err := h.resolveSession(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.client.DeleteProfileSkill(c.Request.Context(), token, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.skills.Discard(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
