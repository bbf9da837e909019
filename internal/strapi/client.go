package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client выполняет запросы к headless-бэкенду контента (Strapi).
// Все мутации идут от имени пользователя (bearer из auth cookie);
// серверный apiToken используется только для публичных чтений.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL возвращает адрес бэкенда (нужен для сборки абсолютных URL медиа).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError описывает ошибку, возвращённую бэкендом контента.
type APIError struct {
	Status  int
	Message string
	Payload map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strapi: код ответа %d: %s", e.Status, e.Message)
}

// request выполняет JSON-запрос к бэкенду и декодирует ответ.
// Пользовательский token имеет приоритет над серверным apiToken.
func (c *Client) request(ctx context.Context, method, path, token string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	bearer := token
	if bearer == "" {
		bearer = c.apiToken
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Тело может быть пустым (например, у DELETE), это не ошибка.
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(payload, resp.Status),
			Payload: payload,
		}
	}

	return payload, nil
}

// errorMessage вытаскивает понятное сообщение из конверта ошибки бэкенда.
// Strapi отвечает либо {error:{message}}, либо {message}, либо вообще без тела.
func errorMessage(payload map[string]any, fallback string) string {
	if payload != nil {
		if errObj, ok := payload["error"].(map[string]any); ok {
			if msg := asString(errObj["message"]); msg != "" {
				return msg
			}
		}
		if msg := asString(payload["message"]); msg != "" {
			return msg
		}
	}
	return fallback
}

// dataObject возвращает содержимое конверта {data: {...}} как объект.
func dataObject(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	obj, _ := payload["data"].(map[string]any)
	return obj
}

// dataArray возвращает содержимое конверта {data: [...]} как список объектов.
func dataArray(payload map[string]any) []map[string]any {
	if payload == nil {
		return nil
	}
	raw, _ := payload["data"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// flatten приводит сущность к плоскому виду {id, documentId, ...поля}.
// Понимает оба формата бэкенда: v4 с вложенным attributes и v5 плоский.
func flatten(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}
	attrs, ok := raw["attributes"].(map[string]any)
	if !ok {
		return raw
	}

	out := make(map[string]any, len(attrs)+2)
	for k, v := range attrs {
		out[k] = v
	}
	out["id"] = raw["id"]
	if doc, exists := raw["documentId"]; exists {
		out["documentId"] = doc
	}
	return out
}

// asInt приводит значение из JSON к int (числа приходят как float64).
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}

// asString приводит значение из JSON к строке.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// clampLevel ограничивает уровень владения диапазоном [0,100].
func clampLevel(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
