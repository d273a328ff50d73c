package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	cfg := models.APIKeyConfig{Keys: map[string]string{
		"dispatcher": "key-dispatch",
		"ops":        "key-ops",
		"disabled":   "",
	}}

	tests := []struct {
		name            string
		key             string
		allowed         []string
		expectedCode    int
		expectedService string
	}{
		{"any configured key", "key-ops", nil, http.StatusOK, "ops"},
		{"allowed service", "key-dispatch", []string{"dispatcher"}, http.StatusOK, "dispatcher"},
		{"key of another service", "key-ops", []string{"dispatcher"}, http.StatusUnauthorized, ""},
		{"unknown key", "nope", nil, http.StatusUnauthorized, ""},
		{"missing key", "", nil, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/rides/r1/cancel", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			handler := ValidateAPIKey(cfg, tt.allowed...)(func(c echo.Context) error {
				return c.String(http.StatusOK, c.Get("service_name").(string))
			})
			require.NoError(t, handler(c))
			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedService != "" {
				assert.Equal(t, tt.expectedService, rec.Body.String())
			}
		})
	}
}
