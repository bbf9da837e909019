package strapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

// testBackend — минимальный бэкенд для httptest: хэндлер плюс журнал запросов.
type testBackend struct {
	requests []string
	handler  http.HandlerFunc
}

func newTestBackend(handler http.HandlerFunc) (*testBackend, *httptest.Server) {
	b := &testBackend{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.handler(w, r)
	}))
	return b, srv
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestEnsureDocumentID_NumericTriggersLookup(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("filters[id][$eq]"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{map[string]any{"id": 42, "documentId": "doc-42"}},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	doc, err := client.EnsureDocumentID(context.Background(), "tok", "42")
	assert.NoError(t, err)
	assert.Equal(t, "doc-42", doc)
	assert.Len(t, backend.requests, 1)
}

func TestEnsureDocumentID_NonNumericSkipsNetwork(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		t.Error("неожиданный запрос к бэкенду")
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	doc, err := client.EnsureDocumentID(context.Background(), "tok", "a1b2c3")
	assert.NoError(t, err)
	assert.Equal(t, "a1b2c3", doc)
	assert.Empty(t, backend.requests)
}

func TestEnsureDocumentID_MissingRow(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	_, err := client.EnsureDocumentID(context.Background(), "tok", "42")
	assert.ErrorIs(t, err, apperror.ErrRowNotFound)
}

func TestEnsureDocumentID_V4Envelope(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{map[string]any{
				"id":         42,
				"documentId": "doc-42",
				"attributes": map[string]any{"level": 50},
			}},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	doc, err := client.EnsureDocumentID(context.Background(), "tok", "42")
	assert.NoError(t, err)
	assert.Equal(t, "doc-42", doc)
}

func TestCreateProfileSkill_ValidatesBeforeNetwork(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		t.Error("неожиданный запрос к бэкенду")
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)

	_, err := client.CreateProfileSkill(context.Background(), "", 7, 3, 50)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = client.CreateProfileSkill(context.Background(), "tok", 0, 3, 50)
	assert.True(t, apperror.IsValidation(err))

	_, err = client.CreateProfileSkill(context.Background(), "tok", 7, 0, 50)
	assert.True(t, apperror.IsValidation(err))

	assert.Empty(t, backend.requests)
}

func TestCreateProfileSkill_ClampsLevel(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(100), data["level"])

		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"id": 5, "documentId": "doc-5", "level": 100},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	row, err := client.CreateProfileSkill(context.Background(), "tok", 7, 3, 150)
	assert.NoError(t, err)
	assert.Equal(t, 5, row.ID)
	assert.Equal(t, "doc-5", row.DocumentID)
	assert.Equal(t, 100, row.Level)
}

func TestUpdateProfileSkill_EmptyPatchSkipsNetwork(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		t.Error("неожиданный запрос к бэкенду")
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	err := client.UpdateProfileSkill(context.Background(), "tok", "42", ProfileSkillPatch{})
	assert.ErrorIs(t, err, apperror.ErrNothingToUpdate)
	assert.Empty(t, backend.requests)
}

func TestUpdateProfileSkill_ResolvesThenUpdates(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []any{map[string]any{"id": 42, "documentId": "doc-42"}},
			})
		case http.MethodPut:
			assert.Equal(t, "/api/profile-skills/doc-42", r.URL.Path)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			data := body["data"].(map[string]any)
			assert.Equal(t, float64(60), data["level"])
			_, hasSkill := data["skill"]
			assert.False(t, hasSkill)
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 42}})
		}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	level := 60
	err := client.UpdateProfileSkill(context.Background(), "tok", "42", ProfileSkillPatch{Level: &level})
	assert.NoError(t, err)
	assert.Len(t, backend.requests, 2)
}

func TestDeleteProfileSkill_NotFound(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []any{map[string]any{"id": 42, "documentId": "doc-42"}},
			})
		case http.MethodDelete:
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"message": "Not Found"},
			})
		}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	err := client.DeleteProfileSkill(context.Background(), "tok", "42")
	assert.ErrorIs(t, err, apperror.ErrRowNotFound)
}

func TestDeleteProfileSkill_DocumentIDGoesStraightToDelete(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/profile-skills/doc-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	err := client.DeleteProfileSkill(context.Background(), "tok", "doc-42")
	assert.NoError(t, err)
	assert.Len(t, backend.requests, 1)
}

func TestListProfileSkills_ParsesBothShapes(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("filters[developer_profile][id][$eq]"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{
				// v5: плоская строка
				map[string]any{
					"id": 10, "documentId": "doc-10", "level": 50,
					"skill": map[string]any{"id": 1, "name": "Go", "tag": "backend"},
				},
				// v4: attributes и конверт data у связи
				map[string]any{
					"id": 11,
					"attributes": map[string]any{
						"level": 70,
						"skill": map[string]any{
							"data": map[string]any{
								"id":         2,
								"attributes": map[string]any{"name": "TypeScript"},
							},
						},
					},
				},
			},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	rows, err := client.ListProfileSkills(context.Background(), "tok", 7)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	assert.Equal(t, 10, rows[0].ID)
	assert.Equal(t, "doc-10", rows[0].DocumentID)
	assert.Equal(t, "Go", rows[0].Skill.Name)

	assert.Equal(t, 11, rows[1].ID)
	assert.Equal(t, 70, rows[1].Level)
	assert.Equal(t, 2, rows[1].Skill.ID)
	assert.Equal(t, "TypeScript", rows[1].Skill.Name)
}

func TestAPIErrorStatusPreserved(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []any{map[string]any{"id": 42, "documentId": "doc-42"}},
			})
			return
		}
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"message": "Forbidden"},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	level := 10
	err := client.UpdateProfileSkill(context.Background(), "tok", "42", ProfileSkillPatch{Level: &level})

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	assert.Equal(t, "Forbidden", appErr.Message)
}
