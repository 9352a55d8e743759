package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopProcessing struct{}

func (nopProcessing) ProcessAnalysis(context.Context, uuid.UUID) error { return nil }

func TestRegisterRoutes(t *testing.T) {
	_, api := humatest.New(t)
	RegisterRoutes(api, nil, nil, nopProcessing{})

	openAPI := api.OpenAPI()
	for _, path := range []string{
		"/api/analyses",
		"/api/analyses/{id}/status",
		"/api/analyses/{id}/results",
		"/api/analyses/{id}/process",
		"/api/legend",
	} {
		assert.Contains(t, openAPI.Paths, path)
	}

	resp := api.Get("/api/legend?width=120&height=160")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "\x89PNG"))

	resp = api.Get("/api/analyses/not-a-uuid/status")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/analyses", map[string]any{
		"session_id": "short",
		"floor":      map[string]any{"width": 100, "height": 100},
		"points":     []any{},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/api/analyses", map[string]any{
		"session_id": "session-1234567890",
		"floor":      map[string]any{"width": 100, "height": 100},
		"points": []any{map[string]any{
			"x":           10,
			"y":           10,
			"captured_at": "2024-05-01T09:00:00Z",
			"measurements": []any{map[string]any{
				"ssid":            "Corp",
				"bssid":           "00:11:22:33:44:55",
				"channel":         6,
				"signal_strength": -50,
				"band":            "2.4GHz",
			}},
		}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "band")
}
