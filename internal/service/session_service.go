package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/audit"
	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/frame"
	"github.com/saturnino-fabrica-de-software/facescan/internal/leaderboard"
	"github.com/saturnino-fabrica-de-software/facescan/internal/session"
	"github.com/saturnino-fabrica-de-software/facescan/internal/ws"
)

type SessionStoreInterface interface {
	Create() *session.Session
	Get(id uuid.UUID) (*session.Session, error)
	Delete(id uuid.UUID) bool
	TTL() time.Duration
}

type AnalyzerInterface interface {
	Analyze(ctx context.Context, img image.Image) (*domain.AnalysisResult, error)
}

type FrameProcessorInterface interface {
	Process(ctx context.Context, cell *frame.Cell, data []byte) ([]byte, error)
}

type EventPublisher interface {
	Broadcast(sessionID uuid.UUID, eventType ws.EventType, data any)
	EndSession(sessionID uuid.UUID, reason string)
}

// AnalyzeRequest is the input of one on-demand analysis
type AnalyzeRequest struct {
	Username string `json:"username" validate:"required"`
	ClientIP string `json:"-"`
}

// AnalyzeOutcome is a finished analysis and, when a face was found, the rank
// of the entry it added to the leaderboard
type AnalyzeOutcome struct {
	Result *domain.AnalysisResult
	Rank   int
}

// SessionState summarizes a session for the client
type SessionState struct {
	ID        uuid.UUID   `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	ActiveTab session.Tab `json:"active_tab"`
	HasFrame  bool        `json:"has_frame"`
	HasResult bool        `json:"has_result"`
	Entries   int         `json:"entries"`
}

type SessionService struct {
	store        SessionStoreInterface
	analyzer     AnalyzerInterface
	frames       FrameProcessorInterface
	events       EventPublisher
	auditLogger  audit.Logger
	validate     *validator.Validate
	detectorName string
	logger       *slog.Logger
}

func NewSessionService(
	store SessionStoreInterface,
	analyzer AnalyzerInterface,
	frames FrameProcessorInterface,
	events EventPublisher,
	logger *slog.Logger,
) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		store:       store,
		analyzer:    analyzer,
		frames:      frames,
		events:      events,
		auditLogger: &audit.NoOpLogger{},
		validate:    validator.New(),
		logger:      logger,
	}
}

// WithAudit sets the audit logger and the detector name recorded in events
func (s *SessionService) WithAudit(logger audit.Logger, detectorName string) *SessionService {
	s.auditLogger = logger
	s.detectorName = detectorName
	return s
}

func (s *SessionService) logAudit(ctx context.Context, event audit.Event) {
	event.Detector = s.detectorName
	if err := s.auditLogger.Log(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit log failed", "error", err)
	}
}

// StartSession opens a new, empty session
func (s *SessionService) StartSession(ctx context.Context) *SessionState {
	sess := s.store.Create()

	s.logAudit(ctx, audit.Event{
		SessionID: sess.ID,
		EventType: audit.EventSessionStarted,
		Success:   true,
	})

	return s.stateOf(sess)
}

// State returns the summary of a live session
func (s *SessionService) State(ctx context.Context, id uuid.UUID) (*SessionState, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.stateOf(sess), nil
}

func (s *SessionService) stateOf(sess *session.Session) *SessionState {
	_, hasFrame := sess.Frames.Load()
	_, hasResult := sess.Result()

	return &SessionState{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt(s.store.TTL()),
		ActiveTab: sess.ActiveTab(),
		HasFrame:  hasFrame,
		HasResult: hasResult,
		Entries:   sess.Board.Len(),
	}
}

// EndSession discards a session and disconnects its event listeners
func (s *SessionService) EndSession(ctx context.Context, id uuid.UUID) error {
	if !s.store.Delete(id) {
		return domain.ErrSessionNotFound
	}

	s.events.EndSession(id, "ended")
	s.logAudit(ctx, audit.Event{
		SessionID: id,
		EventType: audit.EventSessionEnded,
		Success:   true,
	})
	return nil
}

// Expire is called by the session reaper for every idle session it removed
func (s *SessionService) Expire(ctx context.Context, id uuid.UUID) {
	s.events.EndSession(id, "expired")
	s.logAudit(ctx, audit.Event{
		SessionID: id,
		EventType: audit.EventSessionExpired,
		Success:   true,
	})
}

// PushFrame stores a live frame as the session's latest and returns the preview JPEG
func (s *SessionService) PushFrame(ctx context.Context, id uuid.UUID, data []byte) ([]byte, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.frames.Process(ctx, sess.Frames, data)
}

// Analyze scores the latest frame of the session for req.Username. The
// username is checked before the frame is read or any backend is called. A
// frame without a face produces a result with FaceFound false and records
// nothing.
func (s *SessionService) Analyze(ctx context.Context, id uuid.UUID, req AnalyzeRequest) (*AnalyzeOutcome, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	latest, ok := sess.Frames.Load()
	if !ok {
		return nil, domain.ErrNoFrameAvailable
	}

	result, err := s.analyzer.Analyze(ctx, latest.Image)
	if err != nil {
		s.logAudit(ctx, audit.Event{
			SessionID: id,
			EventType: audit.EventAnalysisFailed,
			Username:  req.Username,
			IPAddress: req.ClientIP,
			Success:   false,
			Error:     err.Error(),
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.ErrProviderUnavailable.WithError(err)
	}

	if !result.FaceFound {
		sess.ReplaceResult(result)
		s.logAudit(ctx, audit.Event{
			SessionID: id,
			EventType: audit.EventFaceNotFound,
			Username:  req.Username,
			IPAddress: req.ClientIP,
			Success:   true,
		})
		return &AnalyzeOutcome{Result: result}, nil
	}

	rank, err := sess.Board.Record(req.Username, result.SymmetryScore)
	if err != nil {
		return nil, err
	}
	sess.SetResult(result)

	s.logAudit(ctx, audit.Event{
		SessionID: id,
		EventType: audit.EventEntryRecorded,
		Username:  req.Username,
		IPAddress: req.ClientIP,
		Success:   true,
		Metadata: map[string]string{
			"score":   strconv.FormatFloat(result.SymmetryScore, 'f', 2, 64),
			"rank":    strconv.Itoa(rank),
			"entries": strconv.Itoa(sess.Board.Len()),
		},
	})

	s.logAudit(ctx, audit.Event{
		SessionID: id,
		EventType: audit.EventAnalysisCompleted,
		Username:  req.Username,
		IPAddress: req.ClientIP,
		Success:   true,
		Metadata: map[string]string{
			"symmetry":     strconv.FormatFloat(result.SymmetryScore, 'f', 4, 64),
			"golden_ratio": strconv.FormatFloat(result.GoldenRatioScore, 'f', 4, 64),
			"rank":         strconv.Itoa(rank),
			"frame_seq":    strconv.FormatUint(latest.Seq, 10),
		},
	})

	s.events.Broadcast(id, ws.EventAnalysisCompleted, map[string]any{
		"result_id":          result.ID,
		"username":           req.Username,
		"symmetry_score":     result.SymmetryScore,
		"golden_ratio_score": result.GoldenRatioScore,
		"rank":               rank,
	})
	s.events.Broadcast(id, ws.EventLeaderboardUpdated, sess.Board.Standings())

	return &AnalyzeOutcome{Result: result, Rank: rank}, nil
}

func (s *SessionService) validateRequest(req AnalyzeRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Username" && fe.Tag() == "required" {
				return domain.ErrMissingUsername
			}
		}
		return domain.ErrValidationFailed.WithError(fmt.Errorf("%s failed on %s", verrs[0].Field(), verrs[0].Tag()))
	}
	return domain.ErrValidationFailed.WithError(err)
}

// Result returns the last analysis and marks it as viewed, which moves the
// session back to the leaderboard tab
func (s *SessionService) Result(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	result, ok := sess.ViewResult()
	if !ok {
		return nil, domain.ErrNoResult
	}
	return result, nil
}

// ResultImage returns the annotated image of the last analysis as PNG
func (s *SessionService) ResultImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	result, ok := sess.Result()
	if !ok || result.Image == nil {
		return nil, domain.ErrNoResult
	}

	var buf bytes.Buffer
	if err := frame.EncodePNG(&buf, result.Image); err != nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("encode result image: %w", err))
	}
	return buf.Bytes(), nil
}

// Leaderboard returns the displayed rows of the session leaderboard
func (s *SessionService) Leaderboard(ctx context.Context, id uuid.UUID) ([]leaderboard.Standing, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Board.Standings(), nil
}
