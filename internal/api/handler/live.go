package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/saturnino-fabrica-de-software/facescan/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/ws"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FramePusher accepts live frames for a session
type FramePusher interface {
	PushFrame(ctx context.Context, id uuid.UUID, data []byte) ([]byte, error)
}

// LiveHandler runs the live loop over a websocket: every binary message is a
// camera frame and is answered with the preview JPEG as a binary message.
// A message larger than maxFrameBytes closes the connection with 1009.
type LiveHandler struct {
	frames        FramePusher
	maxFrameBytes int64
	frameTimeout  time.Duration
	logger        *slog.Logger
}

// NewLiveHandler creates a new LiveHandler instance. maxFrameBytes <= 0
// leaves incoming messages unlimited.
func NewLiveHandler(frames FramePusher, maxFrameBytes int64, frameTimeout time.Duration, logger *slog.Logger) *LiveHandler {
	if frameTimeout <= 0 {
		frameTimeout = 5 * time.Second
	}
	return &LiveHandler{
		frames:        frames,
		maxFrameBytes: maxFrameBytes,
		frameTimeout:  frameTimeout,
		logger:        logger,
	}
}

// Stream handles GET /v1/sessions/:id/live
func (h *LiveHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		defer func() {
			_ = c.Close()
		}()

		sessionID, ok := c.Locals(ws.SessionIDLocal).(uuid.UUID)
		if !ok {
			return
		}

		if h.maxFrameBytes > 0 {
			c.SetReadLimit(h.maxFrameBytes)
		}

		h.logger.Debug("live loop started", "session_id", sessionID)
		frames := 0
		defer func() {
			h.logger.Debug("live loop stopped", "session_id", sessionID, "frames", frames)
		}()

		for {
			messageType, data, err := c.ReadMessage()
			if errors.Is(err, fastws.ErrReadLimit) {
				h.logger.Warn("live frame too large", "session_id", sessionID, "limit", h.maxFrameBytes)
				return
			}
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("live loop read failed", "session_id", sessionID, "error", err)
				}
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}

			preview, err := h.pushFrame(sessionID, data)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					_ = h.writeError(c, err)
					return
				}
				if err := h.writeError(c, err); err != nil {
					return
				}
				continue
			}
			frames++

			if err := c.WriteMessage(websocket.BinaryMessage, preview); err != nil {
				return
			}
		}
	})
}

func (h *LiveHandler) pushFrame(sessionID uuid.UUID, data []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.frameTimeout)
	defer cancel()
	return h.frames.PushFrame(ctx, sessionID, data)
}

// writeError reports a rejected frame as a text message
func (h *LiveHandler) writeError(c *websocket.Conn, err error) error {
	appErr := domain.ErrInternal
	var target *domain.AppError
	if errors.As(err, &target) {
		appErr = target
	}

	msg, mErr := json.Marshal(middleware.ErrorResponse{
		Error: middleware.ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
	if mErr != nil {
		return mErr
	}
	return c.WriteMessage(websocket.TextMessage, msg)
}
