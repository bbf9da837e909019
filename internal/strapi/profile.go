package strapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

// profileMediaFields — явный список полей медиа. Для файлов нельзя делать
// populate "*": бэкенд запрещает ключ related, а без него теряются превью.
var profileMediaFields = []string{
	"url", "formats", "alternativeText", "width", "height", "mime", "name", "size",
}

// addFields дописывает индексированные fields-параметры populate.
func addFields(p url.Values, baseKey string, fields []string) {
	for i, f := range fields {
		p.Set(fmt.Sprintf("%s[%d]", baseKey, i), f)
	}
}

// profilePopulate собирает параметры populate для профиля целиком:
// hero-секция, соцсети, навыки с вложенным skill и иконкой, About.avatar,
// проекты с обложкой и галереей.
func profilePopulate(p url.Values) {
	p.Set("populate[Herosection]", "*")
	p.Set("populate[socials]", "*")
	p.Set("populate[profile_skills]", "*")
	p.Set("populate[profile_skills][populate][skill]", "*")
	addFields(p, "populate[About][populate][avatar][fields]", profileMediaFields)
	p.Set("populate[projects]", "*")
	addFields(p, "populate[projects][populate][cover][fields]", profileMediaFields)
	addFields(p, "populate[projects][populate][gallery][fields]", profileMediaFields)
	addFields(p, "populate[profile_skills][populate][skill][populate][icon][fields]", profileMediaFields)
}

// FindMyProfile ищет профиль, привязанный к пользователю.
// Возвращает (nil, nil), если профиля ещё нет.
func (c *Client) FindMyProfile(ctx context.Context, token string, userID int) (*models.Profile, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}

	p := url.Values{}
	p.Set("filters[users_permissions_user][id][$eq]", strconv.Itoa(userID))
	profilePopulate(p)

	payload, err := c.request(ctx, http.MethodGet, "/api/developer-profiles?"+p.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	rows := dataArray(payload)
	if len(rows) == 0 {
		return nil, nil
	}
	return parseProfile(rows[0]), nil
}

// FindProfileBySlug ищет опубликованный профиль для публичной страницы.
// Возвращает (nil, nil), если профиль не найден.
func (c *Client) FindProfileBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	p := url.Values{}
	p.Set("filters[slug][$eq]", slug)
	profilePopulate(p)

	payload, err := c.request(ctx, http.MethodGet, "/api/developer-profiles?"+p.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	rows := dataArray(payload)
	if len(rows) == 0 {
		return nil, nil
	}
	return parseProfile(rows[0]), nil
}

// CreateProfile создаёт профиль, привязанный к пользователю.
func (c *Client) CreateProfile(ctx context.Context, token string, userID int, fields map[string]any) (*models.Profile, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}

	data := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["users_permissions_user"] = userID

	payload, err := c.request(ctx, http.MethodPost, "/api/developer-profiles", token, map[string]any{
		"data": data,
	})
	if err != nil {
		return nil, err
	}
	return parseProfile(dataObject(payload)), nil
}

// UpdateProfile отправляет частичный patch профиля.
// Сначала пробует числовой id; если бэкенд отвечает 404 (v5 адресует строки
// через documentId), повторяет запрос по documentId.
func (c *Client) UpdateProfile(ctx context.Context, token string, profile *models.Profile, patch map[string]any) error {
	if token == "" {
		return apperror.ErrUnauthorized
	}

	body := map[string]any{"data": patch}

	_, err := c.request(ctx, http.MethodPut, fmt.Sprintf("/api/developer-profiles/%d", profile.ID), token, body)
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound && profile.DocumentID != "" {
		_, retryErr := c.request(ctx, http.MethodPut, "/api/developer-profiles/"+profile.DocumentID, token, body)
		return retryErr
	}
	return err
}

// parseProfile нормализует сущность профиля: плоский Raw для фронта плюс
// типизированные поля, нужные серверу.
func parseProfile(raw map[string]any) *models.Profile {
	flat := flatten(raw)
	if flat == nil {
		return nil
	}
	return &models.Profile{
		ID:           asInt(flat["id"]),
		DocumentID:   asString(flat["documentId"]),
		Slug:         asString(flat["slug"]),
		YourName:     asString(flat["YourName"]),
		ContactEmail: asString(flat["contactEmail"]),
		Raw:          flat,
	}
}
