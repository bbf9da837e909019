package strapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// MediaURL переводит путь файла в абсолютный URL бэкенда.
func (c *Client) MediaURL(raw string) string {
	if raw == "" {
		return ""
	}
	if absoluteURL.MatchString(raw) {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.baseURL + raw
}

// mediaURLOf достаёт относительный url из медиа-объекта любого формата:
// v4 {data:{attributes:{url}}}, v5 {url} или просто строка.
func mediaURLOf(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case map[string]any:
		if inner, ok := m["data"].(map[string]any); ok {
			m = flatten(inner)
		}
		return asString(m["url"])
	default:
		return ""
	}
}

// ForwardUpload проксирует multipart-тело загрузки в бэкенд как есть.
// Возвращает список созданных файлов.
func (c *Client) ForwardUpload(ctx context.Context, token, contentType string, body io.Reader) ([]map[string]any, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var payload map[string]any
		_ = json.Unmarshal(raw, &payload)
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(payload, resp.Status),
			Payload: payload,
		}
	}

	// /api/upload отвечает списком файлов без конверта data.
	var files []map[string]any
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// MediaFile возвращает метаданные файла по id.
func (c *Client) MediaFile(ctx context.Context, token, id string) (map[string]any, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}
	return c.request(ctx, http.MethodGet, "/api/upload/files/"+id, token, nil)
}
