package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, body io.Reader) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", domain.ErrNoFrameAvailable, 409, "NO_FRAME_AVAILABLE"},
		{"wrapped app error", domain.ErrProviderUnavailable.WithError(errors.New("down")), 502, "PROVIDER_UNAVAILABLE"},
		{"fiber error", fiber.ErrUpgradeRequired, 426, "HTTP_ERROR"},
		{"unknown error", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(discardLogger())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp.Body).Code)
		})
	}
}

func TestRecover(t *testing.T) {
	app := fiber.New()
	app.Use(Recover(discardLogger()))
	app.Get("/", func(c *fiber.Ctx) error { panic("nil map") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Code)
}

func TestLogger_PassesErrorThrough(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(discardLogger())})
	app.Use(Logger(discardLogger()))
	app.Get("/", func(c *fiber.Ctx) error { return domain.ErrNoResult })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, 404, statusOf(domain.ErrNoResult))
	assert.Equal(t, 500, statusOf(errors.New("x")))
}

func TestSession(t *testing.T) {
	store := session.NewStore(time.Hour, discardLogger())
	sess := store.Create()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(discardLogger())})
	app.Get("/sessions/:id", Session(store), func(c *fiber.Ctx) error {
		id, err := SessionID(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})

	t.Run("known session", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/sessions/"+sess.ID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, sess.ID.String(), string(body))
	})

	for name, id := range map[string]string{
		"unknown session": uuid.NewString(),
		"malformed id":    "not-a-uuid",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/sessions/"+id, nil))
			require.NoError(t, err)
			assert.Equal(t, 404, resp.StatusCode)
			assert.Equal(t, "SESSION_NOT_FOUND", decodeError(t, resp.Body).Code)
		})
	}
}

func TestSessionID_Missing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := SessionID(c)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		return c.SendStatus(204)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
