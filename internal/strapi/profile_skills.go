package strapi

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

var numericID = regexp.MustCompile(`^\d+$`)

// EnsureDocumentID переводит числовой суррогат строки в documentId.
// Update и delete в v5 принимают только documentId, а фильтры работают и по
// числовому id, поэтому нечисловой ключ возвращается без запроса к бэкенду.
func (c *Client) EnsureDocumentID(ctx context.Context, token, key string) (string, error) {
	if !numericID.MatchString(key) {
		return key, nil
	}

	p := url.Values{}
	p.Set("filters[id][$eq]", key)
	p.Set("fields[0]", "documentId")

	payload, err := c.request(ctx, http.MethodGet, "/api/profile-skills?"+p.Encode(), token, nil)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeResolveFailed, "не удалось разрешить идентификатор строки")
	}

	rows := dataArray(payload)
	if len(rows) == 0 {
		return "", apperror.ErrRowNotFound
	}

	doc := asString(flatten(rows[0])["documentId"])
	if doc == "" {
		return "", apperror.ErrRowNotFound
	}
	return doc, nil
}

// ProfileSkillPatch — частичное изменение строки. Nil-поле не отправляется.
type ProfileSkillPatch struct {
	Level   *int
	SkillID *int
}

// Empty сообщает, что patch не содержит ни одного поля.
func (p ProfileSkillPatch) Empty() bool {
	return p.Level == nil && p.SkillID == nil
}

// CreateProfileSkill создаёт строку профиль-навык.
// Валидация идентификаторов выполняется до любого сетевого запроса.
func (c *Client) CreateProfileSkill(ctx context.Context, token string, profileID, skillID, level int) (*models.ProfileSkillRow, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}
	if profileID <= 0 || skillID <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "developer_profile и skill обязательны")
	}

	payload, err := c.request(ctx, http.MethodPost, "/api/profile-skills", token, map[string]any{
		"data": map[string]any{
			"developer_profile": profileID,
			"skill":             skillID,
			"level":             clampLevel(level),
		},
	})
	if err != nil {
		return nil, wrapAPIError(err, apperror.ErrCodeCreateFailed, "не удалось создать строку навыка")
	}

	flat := flatten(dataObject(payload))
	if flat == nil {
		return nil, apperror.New(apperror.ErrCodeCreateFailed, "бэкенд вернул пустой ответ")
	}
	return &models.ProfileSkillRow{
		ID:         asInt(flat["id"]),
		DocumentID: asString(flat["documentId"]),
		Level:      asInt(flat["level"]),
	}, nil
}

// UpdateProfileSkill обновляет строку по любому из идентификаторов.
// Пустой patch отклоняется без сетевого запроса.
func (c *Client) UpdateProfileSkill(ctx context.Context, token, key string, patch ProfileSkillPatch) error {
	if token == "" {
		return apperror.ErrUnauthorized
	}
	if patch.Empty() {
		return apperror.ErrNothingToUpdate
	}

	doc, err := c.EnsureDocumentID(ctx, token, key)
	if err != nil {
		return err
	}

	data := map[string]any{}
	if patch.Level != nil {
		data["level"] = clampLevel(*patch.Level)
	}
	if patch.SkillID != nil {
		data["skill"] = *patch.SkillID
	}

	_, err = c.request(ctx, http.MethodPut, "/api/profile-skills/"+doc, token, map[string]any{
		"data": data,
	})
	if err != nil {
		return wrapAPIError(err, apperror.ErrCodeUpdateFailed, "не удалось обновить строку навыка")
	}
	return nil
}

// DeleteProfileSkill удаляет строку по любому из идентификаторов.
// Повторное удаление уже удалённой строки отдаёт NotFound, решение о
// фатальности принимает вызывающая сторона.
func (c *Client) DeleteProfileSkill(ctx context.Context, token, key string) error {
	if token == "" {
		return apperror.ErrUnauthorized
	}

	doc, err := c.EnsureDocumentID(ctx, token, key)
	if err != nil {
		return err
	}

	_, err = c.request(ctx, http.MethodDelete, "/api/profile-skills/"+doc, token, nil)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
			return apperror.ErrRowNotFound
		}
		return wrapAPIError(err, apperror.ErrCodeDeleteFailed, "не удалось удалить строку навыка")
	}
	return nil
}

// ListProfileSkills загружает все строки профиля вместе с данными навыка.
// Это единственный источник правды после батч-сохранения.
func (c *Client) ListProfileSkills(ctx context.Context, token string, profileID int) ([]models.ProfileSkillRow, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}

	p := url.Values{}
	p.Set("filters[developer_profile][id][$eq]", strconv.Itoa(profileID))
	p.Set("sort", "id:asc")
	p.Set("pagination[pageSize]", "200")
	p.Set("populate[skill][fields][0]", "name")
	p.Set("populate[skill][fields][1]", "tag")
	p.Set("populate[skill][populate][icon][fields][0]", "url")

	payload, err := c.request(ctx, http.MethodGet, "/api/profile-skills?"+p.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	raw := dataArray(payload)
	rows := make([]models.ProfileSkillRow, 0, len(raw))
	for _, item := range raw {
		flat := flatten(item)
		row := models.ProfileSkillRow{
			ID:         asInt(flat["id"]),
			DocumentID: asString(flat["documentId"]),
			Level:      asInt(flat["level"]),
			Skill:      c.parseSkill(flat["skill"]),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// wrapAPIError заворачивает ошибку бэкенда в apperror, сохраняя его статус
// и сообщение; прочие ошибки (сеть, таймаут) получают общий текст.
func wrapAPIError(err error, code apperror.ErrorCode, fallback string) error {
	if apiErr, ok := err.(*APIError); ok {
		return apperror.Wrap(err, code, apiErr.Message).WithStatus(apiErr.Status)
	}
	return apperror.Wrap(err, code, fallback)
}
