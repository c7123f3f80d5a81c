package provider

import (
	"context"
	"errors"
	"image"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

// ErrNoLandmarks is returned by a LandmarkPredictor that could not place the 68 points
var ErrNoLandmarks = errors.New("no landmarks found for face region")

// FaceDetector finds candidate face regions in an image
type FaceDetector interface {
	// DetectFaces returns zero or more boxes, in the backend's own order.
	// No face is an empty slice, not an error.
	DetectFaces(ctx context.Context, img image.Image) ([]domain.BoundingBox, error)
}

// LandmarkPredictor places the 68 ordered landmarks inside a face region
type LandmarkPredictor interface {
	// PredictLandmarks returns exactly domain.LandmarkCount points, or an error.
	PredictLandmarks(ctx context.Context, img image.Image, box domain.BoundingBox) ([]domain.Point, error)
}
