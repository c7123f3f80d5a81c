package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facescan/internal/annotate"
	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
)

// Analyzer runs detection, landmark extraction, scoring and annotation on one frame
type Analyzer struct {
	detector  provider.FaceDetector
	predictor provider.LandmarkPredictor
	logger    *slog.Logger
}

// NewAnalyzer creates an analyzer over the given backends
func NewAnalyzer(detector provider.FaceDetector, predictor provider.LandmarkPredictor, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		detector:  detector,
		predictor: predictor,
		logger:    logger,
	}
}

// Analyze scores the largest face in img. A frame with no face, or a face the
// predictor cannot place landmarks on, is a valid outcome: the result has
// FaceFound false and no scores.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (*domain.AnalysisResult, error) {
	start := time.Now()
	gray := imaging.Grayscale(img)

	boxes, err := a.detector.DetectFaces(ctx, gray)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	result := &domain.AnalysisResult{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}

	box, ok := SelectLargest(boxes)
	if !ok {
		a.logger.DebugContext(ctx, "no face detected",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return result, nil
	}

	points, err := a.predictor.PredictLandmarks(ctx, gray, box)
	if errors.Is(err, provider.ErrNoLandmarks) {
		a.logger.DebugContext(ctx, "no landmarks for face",
			"box", box,
			"error", err,
		)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("predict landmarks: %w", err)
	}

	metrics, err := ComputeMetrics(points)
	if err != nil {
		return nil, err
	}
	axis, err := AxisX(points)
	if err != nil {
		return nil, err
	}

	result.FaceFound = true
	result.SymmetryScore = metrics.Symmetry
	result.GoldenRatioScore = metrics.GoldenRatio
	result.Narrative = SelectNarrative(metrics.Symmetry, metrics.GoldenRatio)
	result.FaceBox = box
	result.Landmarks = points
	result.AxisX = axis
	result.Image = annotate.Annotate(img, box, points, axis)

	a.logger.DebugContext(ctx, "face analyzed",
		"faces", len(boxes),
		"symmetry", metrics.Symmetry,
		"golden_ratio", metrics.GoldenRatio,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// Preview draws every detected face with its landmarks for the live loop.
// Faces whose landmarks cannot be placed are drawn as a box only.
func (a *Analyzer) Preview(ctx context.Context, img image.Image) (*image.RGBA, int, error) {
	gray := imaging.Grayscale(img)

	boxes, err := a.detector.DetectFaces(ctx, gray)
	if err != nil {
		return nil, 0, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]annotate.Face, 0, len(boxes))
	for _, box := range boxes {
		points, err := a.predictor.PredictLandmarks(ctx, gray, box)
		if err != nil && !errors.Is(err, provider.ErrNoLandmarks) {
			return nil, 0, fmt.Errorf("predict landmarks: %w", err)
		}
		faces = append(faces, annotate.Face{Box: box, Points: points})
	}

	return annotate.Overlay(img, faces), len(faces), nil
}
