package models

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondWith(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return Respond(c, err) })

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, testErr)
	defer func() { _ = resp.Body.Close() }()

	raw, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestRespond(t *testing.T) {
	driverErr := errors.New("pq: password authentication failed for user \"app\"")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "validation writes the field map",
			err:        NewFieldError("text", "Text field is required"),
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"text": "Text field is required"},
		},
		{
			name:       "not found",
			err:        NewNotFoundError("No post found"),
			wantStatus: fiber.StatusNotFound,
			wantBody:   map[string]interface{}{"message": "No post found", "code": CodeNotFound},
		},
		{
			name:       "internal error hides its cause",
			err:        NewInternalError(driverErr),
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"message": "Internal server error", "code": CodeInternal},
		},
		{
			name:       "store outage hides its cause",
			err:        NewStoreUnavailableError(driverErr),
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"message": "Store unavailable", "code": CodeStoreUnavailable},
		},
		{
			name:       "plain error hides its text",
			err:        driverErr,
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"message": "Internal server error", "code": CodeInternal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respondWith(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
