package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/leaderboard"
	"github.com/saturnino-fabrica-de-software/facescan/internal/service"
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SessionService interface for the service
type SessionService interface {
	StartSession(ctx context.Context) *service.SessionState
	State(ctx context.Context, id uuid.UUID) (*service.SessionState, error)
	EndSession(ctx context.Context, id uuid.UUID) error
	PushFrame(ctx context.Context, id uuid.UUID, data []byte) ([]byte, error)
	Analyze(ctx context.Context, id uuid.UUID, req service.AnalyzeRequest) (*service.AnalyzeOutcome, error)
	Result(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error)
	ResultImage(ctx context.Context, id uuid.UUID) ([]byte, error)
	Leaderboard(ctx context.Context, id uuid.UUID) ([]leaderboard.Standing, error)
}

// SessionHandler handles session lifecycle, frame upload and leaderboard requests
type SessionHandler struct {
	service       SessionService
	maxFrameBytes int64
	logger        *slog.Logger
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(service SessionService, maxFrameBytes int64, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service:       service,
		maxFrameBytes: maxFrameBytes,
		logger:        logger,
	}
}

// LeaderboardResponse response for leaderboard endpoint
type LeaderboardResponse struct {
	Entries []leaderboard.Standing `json:"entries"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	state := h.service.StartSession(c.UserContext())

	h.logger.Info("session started", "session_id", state.ID)

	c.Location("/v1/sessions/" + state.ID.String())
	return c.Status(fiber.StatusCreated).JSON(state)
}

// Get handles GET /v1/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	state, err := h.service.State(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// Delete handles DELETE /v1/sessions/:id
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	if err := h.service.EndSession(c.UserContext(), id); err != nil {
		return err
	}

	h.logger.Info("session ended", "session_id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadFrame handles POST /v1/sessions/:id/frames. It is the plain HTTP
// counterpart of the live socket and answers with the preview JPEG.
func (h *SessionHandler) UploadFrame(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	data, err := h.readImage(c)
	if err != nil {
		return err
	}

	preview, err := h.service.PushFrame(c.UserContext(), id, data)
	if err != nil {
		return err
	}

	c.Type("jpeg")
	return c.Send(preview)
}

// Leaderboard handles GET /v1/sessions/:id/leaderboard
func (h *SessionHandler) Leaderboard(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	rows, err := h.service.Leaderboard(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(LeaderboardResponse{Entries: rows})
}

// readImage extracts and validates the image from the form
func (h *SessionHandler) readImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size == 0 || (h.maxFrameBytes > 0 && file.Size > h.maxFrameBytes) {
		return nil, domain.ErrInvalidImage
	}

	if !validImageTypes[file.Header.Get("Content-Type")] {
		return nil, domain.ErrInvalidImage
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return data, nil
}
