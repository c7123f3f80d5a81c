package mock

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
)

// defaultMinFaceSize mirrors the real detectors' minimum face size
const defaultMinFaceSize = 100

// Detector implements provider.FaceDetector for tests and local development.
// With no fixed boxes it reports one centered face covering 60% of the
// shorter image side, or none when the image is smaller than MinFaceSize.
type Detector struct {
	Boxes       []domain.BoundingBox
	MinFaceSize int
}

// NewDetector creates a mock detector returning a centered face
func NewDetector() *Detector {
	return &Detector{MinFaceSize: defaultMinFaceSize}
}

// DetectFaces returns the fixed boxes or a synthetic centered face
func (d *Detector) DetectFaces(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	if d.Boxes != nil {
		boxes := make([]domain.BoundingBox, len(d.Boxes))
		copy(boxes, d.Boxes)
		return boxes, nil
	}

	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())
	if side < d.MinFaceSize {
		return []domain.BoundingBox{}, nil
	}

	size := side * 6 / 10
	return []domain.BoundingBox{{
		X:      bounds.Min.X + (bounds.Dx()-size)/2,
		Y:      bounds.Min.Y + (bounds.Dy()-size)/2,
		Width:  size,
		Height: size,
	}}, nil
}

// Predictor implements provider.LandmarkPredictor by scaling a mirrored
// 68-point template into the box. Skew shifts the right half of the face
// horizontally, in pixels, to simulate asymmetry.
type Predictor struct {
	Skew float64
}

// NewPredictor creates a mock predictor with a perfectly mirrored template
func NewPredictor() *Predictor {
	return &Predictor{}
}

// PredictLandmarks places the template inside box
func (p *Predictor) PredictLandmarks(ctx context.Context, img image.Image, box domain.BoundingBox) ([]domain.Point, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return nil, provider.ErrNoLandmarks
	}

	points := make([]domain.Point, domain.LandmarkCount)
	for i, t := range faceTemplate {
		x := float64(box.X) + t.X*float64(box.Width)
		if t.X > 0.5 {
			x += p.Skew
		}
		points[i] = domain.Point{
			X: x,
			Y: float64(box.Y) + t.Y*float64(box.Height),
		}
	}
	return points, nil
}

// faceTemplate is a 68-point face normalized to its box; right-side points
// are exact mirrors (x → 1-x) of their left counterparts.
var faceTemplate = buildTemplate()

func buildTemplate() [domain.LandmarkCount]domain.Point {
	var t [domain.LandmarkCount]domain.Point

	left := map[int]domain.Point{
		// jaw
		0: {X: 0.05, Y: 0.30}, 1: {X: 0.06, Y: 0.42}, 2: {X: 0.09, Y: 0.54}, 3: {X: 0.13, Y: 0.65},
		4: {X: 0.19, Y: 0.75}, 5: {X: 0.27, Y: 0.84}, 6: {X: 0.35, Y: 0.91}, 7: {X: 0.42, Y: 0.96},
		// eyebrow
		17: {X: 0.15, Y: 0.22}, 18: {X: 0.22, Y: 0.18}, 19: {X: 0.30, Y: 0.17}, 20: {X: 0.37, Y: 0.18}, 21: {X: 0.44, Y: 0.21},
		// nostrils
		31: {X: 0.42, Y: 0.64}, 32: {X: 0.46, Y: 0.66},
		// eye
		36: {X: 0.22, Y: 0.32}, 37: {X: 0.27, Y: 0.29}, 38: {X: 0.33, Y: 0.29},
		39: {X: 0.38, Y: 0.33}, 40: {X: 0.33, Y: 0.35}, 41: {X: 0.27, Y: 0.35},
		// outer lips
		48: {X: 0.35, Y: 0.78}, 49: {X: 0.40, Y: 0.75}, 50: {X: 0.46, Y: 0.74},
		58: {X: 0.45, Y: 0.84}, 59: {X: 0.40, Y: 0.82},
		// inner lips
		60: {X: 0.37, Y: 0.78}, 61: {X: 0.45, Y: 0.77}, 67: {X: 0.45, Y: 0.80},
	}

	center := map[int]float64{
		8: 0.98, 27: 0.30, 28: 0.40, 29: 0.50, 30: 0.58, 33: 0.67,
		51: 0.75, 57: 0.85, 62: 0.775, 66: 0.80,
	}

	mirrors := map[int]int{
		16: 0, 15: 1, 14: 2, 13: 3, 12: 4, 11: 5, 10: 6, 9: 7,
		26: 17, 25: 18, 24: 19, 23: 20, 22: 21,
		35: 31, 34: 32,
		45: 36, 44: 37, 43: 38, 42: 39, 47: 40, 46: 41,
		54: 48, 53: 49, 52: 50, 56: 58, 55: 59,
		64: 60, 63: 61, 65: 67,
	}

	for i, p := range left {
		t[i] = p
	}
	for i, y := range center {
		t[i] = domain.Point{X: 0.5, Y: y}
	}
	for right, l := range mirrors {
		t[right] = domain.Point{X: 1 - left[l].X, Y: left[l].Y}
	}

	return t
}

var (
	_ provider.FaceDetector      = (*Detector)(nil)
	_ provider.LandmarkPredictor = (*Predictor)(nil)
)
