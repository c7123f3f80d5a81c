package handler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/service"
)

// NoFaceMessage is shown when the analyzed frame has no detectable face
const NoFaceMessage = "Face not detected. Try again."

// AnalysisHandler handles on-demand analysis and result requests
type AnalysisHandler struct {
	service SessionService
	logger  *slog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler instance
func NewAnalysisHandler(service SessionService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// AnalyzeBody request body for analyze endpoint
type AnalyzeBody struct {
	Username string `json:"username" form:"username"`
}

// AnalysisResponse response for analyze and result endpoints. Scores are
// pointers so a perfect 0 is still rendered.
type AnalysisResponse struct {
	FaceFound          bool      `json:"face_found"`
	Message            string    `json:"message,omitempty"`
	ResultID           string    `json:"result_id,omitempty"`
	SymmetryScore      *float64  `json:"symmetry_score,omitempty"`
	GoldenRatioScore   *float64  `json:"golden_ratio_score,omitempty"`
	SymmetryDisplay    string    `json:"symmetry_display,omitempty"`
	GoldenRatioDisplay string    `json:"golden_ratio_display,omitempty"`
	Title              string    `json:"title,omitempty"`
	SymmetryText       string    `json:"symmetry_text,omitempty"`
	RatioText          string    `json:"ratio_text,omitempty"`
	ImageURL           string    `json:"image_url,omitempty"`
	Rank               int       `json:"rank,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func newAnalysisResponse(sessionID uuid.UUID, result *domain.AnalysisResult, rank int) AnalysisResponse {
	if !result.FaceFound {
		return AnalysisResponse{
			FaceFound: false,
			Message:   NoFaceMessage,
			CreatedAt: result.CreatedAt,
		}
	}

	return AnalysisResponse{
		FaceFound:          true,
		ResultID:           result.ID.String(),
		SymmetryScore:      &result.SymmetryScore,
		GoldenRatioScore:   &result.GoldenRatioScore,
		SymmetryDisplay:    fmt.Sprintf("%.2f", result.SymmetryScore),
		GoldenRatioDisplay: fmt.Sprintf("%.3f", result.GoldenRatioScore),
		Title:              result.Narrative.Title,
		SymmetryText:       result.Narrative.SymmetryText,
		RatioText:          result.Narrative.RatioText,
		ImageURL:           fmt.Sprintf("/v1/sessions/%s/result/image", sessionID),
		Rank:               rank,
		CreatedAt:          result.CreatedAt,
	}
}

// Analyze handles POST /v1/sessions/:id/analyze
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	var body AnalyzeBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	outcome, err := h.service.Analyze(c.UserContext(), id, service.AnalyzeRequest{
		Username: body.Username,
		ClientIP: c.IP(),
	})
	if err != nil {
		return err
	}

	if outcome.Result.FaceFound {
		h.logger.Info("analysis completed",
			"session_id", id,
			"symmetry", outcome.Result.SymmetryScore,
			"rank", outcome.Rank,
		)
	}

	return c.JSON(newAnalysisResponse(id, outcome.Result, outcome.Rank))
}

// Result handles GET /v1/sessions/:id/result
func (h *AnalysisHandler) Result(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	result, err := h.service.Result(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(newAnalysisResponse(id, result, 0))
}

// ResultImage handles GET /v1/sessions/:id/result/image
func (h *AnalysisHandler) ResultImage(c *fiber.Ctx) error {
	id, err := middleware.SessionID(c)
	if err != nil {
		return err
	}

	data, err := h.service.ResultImage(c.UserContext(), id)
	if err != nil {
		return err
	}

	c.Type("png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}
