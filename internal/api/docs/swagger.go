package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// SessionResponse represents the state of an analysis session
type SessionResponse struct {
	SessionID string `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CreatedAt string `json:"created_at" example:"2024-01-01T00:00:00Z"`
	ExpiresAt string `json:"expires_at" example:"2024-01-01T00:30:00Z"`
	ActiveTab string `json:"active_tab" example:"leaderboard"`
	HasFrame  bool   `json:"has_frame" example:"true"`
	HasResult bool   `json:"has_result" example:"false"`
	Entries   int    `json:"entries" example:"3"`
}

// AnalyzeRequest is the body of the analyze endpoint
type AnalyzeRequest struct {
	Username string `json:"username" example:"sari"`
}

// AnalysisResponse represents a finished analysis
type AnalysisResponse struct {
	FaceFound          bool    `json:"face_found" example:"true"`
	Message            string  `json:"message,omitempty" example:""`
	ResultID           string  `json:"result_id" example:"0b5c1d2e-8f7a-4e1b-9c3d-2a1b0c9d8e7f"`
	SymmetryScore      float64 `json:"symmetry_score" example:"1.2345"`
	GoldenRatioScore   float64 `json:"golden_ratio_score" example:"1.6021"`
	SymmetryDisplay    string  `json:"symmetry_display" example:"1.23"`
	GoldenRatioDisplay string  `json:"golden_ratio_display" example:"1.602"`
	Title              string  `json:"title" example:"God Tier! ✨"`
	SymmetryText       string  `json:"symmetry_text" example:"Your face shows an exceptionally high level of symmetry."`
	RatioText          string  `json:"ratio_text" example:"The vertical and horizontal proportions of your face are very close to the Golden Ratio (1.618)."`
	ImageURL           string  `json:"image_url" example:"/v1/sessions/550e8400-e29b-41d4-a716-446655440000/result/image"`
	Rank               int     `json:"rank,omitempty" example:"1"`
	CreatedAt          string  `json:"created_at" example:"2024-01-01T00:05:00Z"`
}

// LeaderboardRow is one displayed leaderboard row
type LeaderboardRow struct {
	Rank         int     `json:"rank" example:"1"`
	Username     string  `json:"username" example:"sari"`
	Score        float64 `json:"score" example:"0.4821"`
	ScoreDisplay string  `json:"score_display" example:"0.48"`
}

// LeaderboardResponse represents the top rows of the session leaderboard
type LeaderboardResponse struct {
	Entries []LeaderboardRow `json:"entries"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var (
	errSessionNotFound = response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found or expired"}, "404", "Not Found")
	errInternal        = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
)

var sessionIDParam = parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session ID returned by POST /sessions"))

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "facescan API",
		Version:     "v1.0.0",
		Description: "Face symmetry analysis sessions: live camera frames, on-demand scoring and a per-session leaderboard",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/sessions - Start Session
		endpoint.New(
			endpoint.POST,
			"/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Start an analysis session"),
			endpoint.WithDescription("Creates an empty session with its own latest-frame slot, result slot and leaderboard. Sessions expire after SESSION_TTL of inactivity."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "201", "Session created"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// GET /v1/sessions/{id} - Session State
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Get session state"),
			endpoint.WithDescription("Returns the active tab and whether a frame and a result are available"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session state"),
			}),
			endpoint.WithErrors([]response.Response{errSessionNotFound}),
		),

		// DELETE /v1/sessions/{id} - End Session
		endpoint.New(
			endpoint.DELETE,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("End a session"),
			endpoint.WithDescription("Discards the session state and closes its event streams"),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Session ended"),
			}),
			endpoint.WithErrors([]response.Response{errSessionNotFound}),
		),

		// POST /v1/sessions/{id}/frames - Upload Frame
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/frames",
			endpoint.WithTags("Live"),
			endpoint.WithSummary("Upload a camera frame"),
			endpoint.WithDescription("Stores the frame (multipart field \"image\", JPEG, PNG or WebP) as the latest frame of the session and returns the live preview as JPEG. The websocket at /sessions/{id}/live does the same for a stream of binary frames."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/jpeg")}),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "Preview JPEG"),
			}),
			endpoint.WithErrors([]response.Response{
				errSessionNotFound,
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted frame"}, "422", "Unprocessable Entity"),
			}),
		),

		// POST /v1/sessions/{id}/analyze - Analyze Latest Frame
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/analyze",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Analyze the latest frame"),
			endpoint.WithDescription("Scores the largest face in the latest frame, records the symmetry score on the leaderboard under username and switches the session to the analysis tab. A frame without a face answers face_found=false and records nothing."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithBody(AnalyzeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "200", "Analysis completed"),
			}),
			endpoint.WithErrors([]response.Response{
				errSessionNotFound,
				response.New(ErrorResponse{Code: "NO_FRAME_AVAILABLE", Message: "Could not grab a frame from the camera, start the camera and try again"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "USERNAME_REQUIRED", Message: "Please enter a username first"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "PROVIDER_UNAVAILABLE", Message: "Face detection backend is unavailable"}, "502", "Bad Gateway"),
			}),
		),

		// GET /v1/sessions/{id}/result - Last Result
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/result",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Get the last analysis"),
			endpoint.WithDescription("Returns the last analysis of the session and switches back to the leaderboard tab"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisResponse{}, "200", "Last analysis"),
			}),
			endpoint.WithErrors([]response.Response{
				errSessionNotFound,
				response.New(ErrorResponse{Code: "NO_RESULT", Message: "No analysis has been run in this session yet"}, "404", "Not Found"),
			}),
		),

		// GET /v1/sessions/{id}/result/image - Annotated Image
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/result/image",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Get the annotated image"),
			endpoint.WithDescription("PNG of the analyzed frame with the face box, the 68 landmarks and the symmetry axis"),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/png")}),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "Annotated PNG"),
			}),
			endpoint.WithErrors([]response.Response{
				errSessionNotFound,
				response.New(ErrorResponse{Code: "NO_RESULT", Message: "No analysis has been run in this session yet"}, "404", "Not Found"),
			}),
		),

		// GET /v1/sessions/{id}/leaderboard - Leaderboard
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}/leaderboard",
			endpoint.WithTags("Leaderboard"),
			endpoint.WithSummary("Get the session leaderboard"),
			endpoint.WithDescription("Top 10 entries, lowest symmetry score first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LeaderboardResponse{}, "200", "Leaderboard rows"),
			}),
			endpoint.WithErrors([]response.Response{errSessionNotFound}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
