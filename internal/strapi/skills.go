package strapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
)

// ListSkills возвращает каталог навыков, отсортированный по имени,
// в нормализованном виде {id, name, tag, iconUrl}.
func (c *Client) ListSkills(ctx context.Context, token string) ([]models.Skill, error) {
	p := url.Values{}
	p.Set("sort", "name:asc")
	p.Set("fields[0]", "id")
	p.Set("fields[1]", "name")
	p.Set("fields[2]", "tag")
	p.Set("populate[icon][fields][0]", "url")

	payload, err := c.request(ctx, http.MethodGet, "/api/skills?"+p.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	raw := dataArray(payload)
	items := make([]models.Skill, 0, len(raw))
	for _, item := range raw {
		items = append(items, c.parseSkill(item))
	}
	return items, nil
}

// parseSkill нормализует запись каталога, перенося иконку в абсолютный URL.
// Принимает сущность в любом формате бэкенда, включая конверт {data:{...}}
// у populate-связей.
func (c *Client) parseSkill(v any) models.Skill {
	raw, ok := v.(map[string]any)
	if !ok {
		return models.Skill{}
	}
	if inner, ok := raw["data"].(map[string]any); ok {
		raw = inner
	}

	flat := flatten(raw)
	name := asString(flat["name"])
	if name == "" {
		name = asString(flat["Name"])
	}
	tag := asString(flat["tag"])
	if tag == "" {
		tag = asString(flat["Tag"])
	}

	return models.Skill{
		ID:      asInt(flat["id"]),
		Name:    name,
		Tag:     tag,
		IconURL: c.MediaURL(mediaURLOf(flat["icon"])),
	}
}

// ListHeroDesigns возвращает активные варианты оформления hero-секции.
// Чтение идёт под серверным apiToken, если он настроен.
func (c *Client) ListHeroDesigns(ctx context.Context) (map[string]any, error) {
	p := url.Values{}
	p.Set("filters[active][$eq]", "true")
	p.Set("populate", "thumbnail")
	p.Set("pagination[pageSize]", "100")

	return c.request(ctx, http.MethodGet, "/api/hero-design-options?"+p.Encode(), "", nil)
}
