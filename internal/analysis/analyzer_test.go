package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
	providermock "github.com/saturnino-fabrica-de-software/facescan/internal/provider/mock"
)

type mockDetector struct {
	mock.Mock
}

func (m *mockDetector) DetectFaces(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BoundingBox), args.Error(1)
}

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) PredictLandmarks(ctx context.Context, img image.Image, box domain.BoundingBox) ([]domain.Point, error) {
	args := m.Called(ctx, img, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Point), args.Error(1)
}

func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

func TestAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("symmetric face", func(t *testing.T) {
		a := NewAnalyzer(providermock.NewDetector(), providermock.NewPredictor(), nil)
		frame := testFrame()

		result, err := a.Analyze(ctx, frame)
		require.NoError(t, err)

		assert.True(t, result.FaceFound)
		assert.InDelta(t, 0.0, result.SymmetryScore, 1e-9)
		assert.Greater(t, result.GoldenRatioScore, 0.0)
		assert.Equal(t, symmetryNarratives[TierTop].title, result.Narrative.Title)
		assert.Len(t, result.Landmarks, domain.LandmarkCount)
		assert.NotEqual(t, uuid.Nil, result.ID)
		require.NotNil(t, result.Image)
		assert.Equal(t, frame.Bounds(), result.Image.Bounds())
		assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 128}, frame.RGBAAt(160, 120))
	})

	t.Run("skewed face lands in a lower tier", func(t *testing.T) {
		a := NewAnalyzer(providermock.NewDetector(), &providermock.Predictor{Skew: 40}, nil)

		result, err := a.Analyze(ctx, testFrame())
		require.NoError(t, err)
		assert.True(t, result.FaceFound)
		assert.Greater(t, result.SymmetryScore, SymmetryMidTierBelow)
		assert.Equal(t, TierLow, SymmetryTierOf(result.SymmetryScore))
	})

	t.Run("no face is not an error", func(t *testing.T) {
		det := new(mockDetector)
		pred := new(mockPredictor)
		det.On("DetectFaces", ctx, mock.Anything).Return([]domain.BoundingBox{}, nil)

		result, err := NewAnalyzer(det, pred, nil).Analyze(ctx, testFrame())
		require.NoError(t, err)
		assert.False(t, result.FaceFound)
		assert.Nil(t, result.Image)
		assert.Zero(t, result.SymmetryScore)
		pred.AssertNotCalled(t, "PredictLandmarks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("landmarks requested for the largest face", func(t *testing.T) {
		det := new(mockDetector)
		pred := new(mockPredictor)
		small := domain.BoundingBox{X: 0, Y: 0, Width: 10, Height: 20}
		large := domain.BoundingBox{X: 100, Y: 50, Width: 120, Height: 120}
		det.On("DetectFaces", ctx, mock.Anything).Return([]domain.BoundingBox{small, large}, nil)

		points, err := providermock.NewPredictor().PredictLandmarks(ctx, nil, large)
		require.NoError(t, err)
		pred.On("PredictLandmarks", ctx, mock.Anything, large).Return(points, nil)

		result, err := NewAnalyzer(det, pred, nil).Analyze(ctx, testFrame())
		require.NoError(t, err)
		assert.Equal(t, large, result.FaceBox)
		pred.AssertExpectations(t)
	})

	t.Run("detector failure is wrapped", func(t *testing.T) {
		det := new(mockDetector)
		boom := errors.New("boom")
		det.On("DetectFaces", ctx, mock.Anything).Return(nil, boom)

		_, err := NewAnalyzer(det, new(mockPredictor), nil).Analyze(ctx, testFrame())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unplaceable landmarks count as no face", func(t *testing.T) {
		det := new(mockDetector)
		pred := new(mockPredictor)
		box := domain.BoundingBox{X: 10, Y: 10, Width: 100, Height: 100}
		det.On("DetectFaces", ctx, mock.Anything).Return([]domain.BoundingBox{box}, nil)
		pred.On("PredictLandmarks", ctx, mock.Anything, box).
			Return(nil, fmt.Errorf("%w: shape server said no", provider.ErrNoLandmarks))

		result, err := NewAnalyzer(det, pred, nil).Analyze(ctx, testFrame())
		require.NoError(t, err)
		assert.False(t, result.FaceFound)
		assert.Nil(t, result.Image)
		assert.Empty(t, result.Landmarks)
	})

	t.Run("predictor failure is wrapped", func(t *testing.T) {
		det := new(mockDetector)
		pred := new(mockPredictor)
		box := domain.BoundingBox{X: 10, Y: 10, Width: 100, Height: 100}
		boom := errors.New("connection refused")
		det.On("DetectFaces", ctx, mock.Anything).Return([]domain.BoundingBox{box}, nil)
		pred.On("PredictLandmarks", ctx, mock.Anything, box).Return(nil, boom)

		_, err := NewAnalyzer(det, pred, nil).Analyze(ctx, testFrame())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("short landmark set rejected", func(t *testing.T) {
		det := new(mockDetector)
		pred := new(mockPredictor)
		box := domain.BoundingBox{X: 10, Y: 10, Width: 100, Height: 100}
		det.On("DetectFaces", ctx, mock.Anything).Return([]domain.BoundingBox{box}, nil)
		pred.On("PredictLandmarks", ctx, mock.Anything, box).Return(make([]domain.Point, 10), nil)

		_, err := NewAnalyzer(det, pred, nil).Analyze(ctx, testFrame())
		assert.ErrorIs(t, err, ErrLandmarkCount)
	})
}

func TestAnalyzer_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("every face is drawn", func(t *testing.T) {
		det := &providermock.Detector{Boxes: []domain.BoundingBox{
			{X: 10, Y: 10, Width: 100, Height: 100},
			{X: 180, Y: 60, Width: 120, Height: 120},
		}}

		out, faces, err := NewAnalyzer(det, providermock.NewPredictor(), nil).Preview(ctx, testFrame())
		require.NoError(t, err)
		assert.Equal(t, 2, faces)
		require.NotNil(t, out)
	})

	t.Run("faces without landmarks still drawn", func(t *testing.T) {
		det := new(mockDetector)
		pred := new(mockPredictor)
		box := domain.BoundingBox{X: 10, Y: 10, Width: 100, Height: 100}
		det.On("DetectFaces", ctx, mock.Anything).Return([]domain.BoundingBox{box}, nil)
		pred.On("PredictLandmarks", ctx, mock.Anything, box).Return(nil, provider.ErrNoLandmarks)

		out, faces, err := NewAnalyzer(det, pred, nil).Preview(ctx, testFrame())
		require.NoError(t, err)
		assert.Equal(t, 1, faces)
		assert.NotNil(t, out)
	})

	t.Run("detector failure", func(t *testing.T) {
		det := new(mockDetector)
		det.On("DetectFaces", ctx, mock.Anything).Return(nil, errors.New("down"))

		_, _, err := NewAnalyzer(det, new(mockPredictor), nil).Preview(ctx, testFrame())
		assert.Error(t, err)
	})
}
