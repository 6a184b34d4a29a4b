package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"udla-mentor-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNop()))
	app.Get("/private", JwtMiddleware(secret), func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", c.Locals("user_id")))
	})
	app.Get("/bad", func(c *fiber.Ctx) error { return BadRequest("Debes enviar 'session_id'", nil) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.ErrTooManyRequests })
	return app
}

func decode(t *testing.T, body io.Reader) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.NewDecoder(body).Decode(&r))
	return r
}

func TestJwtMiddleware(t *testing.T) {
	app := newApp()
	valid := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "mentor-1", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "mentor-1", "exp": time.Now().Add(-time.Hour).Unix()})
	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "mentor-1"})
	wrongAlg := signed(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "mentor-1"})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"expired", "Bearer " + expired, fiber.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, fiber.StatusUnauthorized},
		{"wrong algorithm", "Bearer " + wrongAlg, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode(t, resp.Body)
			assert.Equal(t, tt.status == fiber.StatusOK, body.Success)
			if tt.status == fiber.StatusOK {
				assert.Equal(t, "mentor-1", body.Data)
			}
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Debes enviar 'session_id'", decode(t, resp.Body).Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "Internal server error", body.Message)
	assert.False(t, body.Success)

	resp, err = app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Prompt    string `json:"prompt" validate:"required"`
		SessionID string `json:"session_id" validate:"required"`
	}

	assert.NoError(t, ValidateRequest(req{Prompt: "hola", SessionID: "s1"}))

	err := ValidateRequest(req{Prompt: "hola"})
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, appErr.Code)
	assert.Equal(t, map[string]string{"SessionID": "failed on 'required'"}, appErr.Details)
}
