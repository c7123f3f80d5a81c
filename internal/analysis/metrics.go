package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

// ErrLandmarkCount is returned when a non-empty point set is not a full 68-point face
var ErrLandmarkCount = errors.New("landmark set must contain exactly 68 points")

// Pair is a (left, right) landmark index pair mirrored across the face midline
type Pair struct {
	Left  int
	Right int
}

// symmetryPairs compares jaw, eyebrows, eyes, outer and inner lips.
var symmetryPairs = [22]Pair{
	{0, 16}, {1, 15}, {2, 14}, {3, 13}, {4, 12}, {5, 11}, {6, 10}, {7, 9},
	{17, 26}, {18, 25}, {19, 24}, {20, 23}, {21, 22},
	{36, 45}, {37, 44}, {38, 43}, {39, 42},
	{48, 54}, {49, 53}, {50, 52},
	{60, 64}, {61, 63},
}

// SymmetryPairs returns a copy of the fixed pair table
func SymmetryPairs() []Pair {
	pairs := make([]Pair, len(symmetryPairs))
	copy(pairs, symmetryPairs[:])
	return pairs
}

// Metrics holds the two scalar scores of a face.
// Symmetry: lower is more symmetric, 0 is a perfect mirror.
// GoldenRatio: |height / width| of the face, 0 when the width is not positive.
type Metrics struct {
	Symmetry    float64 `json:"symmetry"`
	GoldenRatio float64 `json:"golden_ratio"`
}

// ComputeMetrics turns 68 ordered landmarks into the symmetry and golden-ratio
// scores. An empty point set yields zero scores.
func ComputeMetrics(points []domain.Point) (Metrics, error) {
	if len(points) == 0 {
		return Metrics{}, nil
	}
	if len(points) != domain.LandmarkCount {
		return Metrics{}, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}

	centerX, err := AxisX(points)
	if err != nil {
		return Metrics{}, err
	}

	deviations := make(stats.Float64Data, 0, len(symmetryPairs))
	for _, pair := range symmetryPairs {
		left := points[pair.Left].X - centerX
		right := points[pair.Right].X - centerX
		deviations = append(deviations, math.Abs(left+right))
	}

	symmetry, err := stats.Mean(deviations)
	if err != nil {
		return Metrics{}, fmt.Errorf("symmetry mean: %w", err)
	}

	return Metrics{
		Symmetry:    symmetry,
		GoldenRatio: goldenRatio(points),
	}, nil
}

// AxisX returns the horizontal center of the face: the mean x of all points
func AxisX(points []domain.Point) (float64, error) {
	xs := make(stats.Float64Data, len(points))
	for i, p := range points {
		xs[i] = p.X
	}

	center, err := stats.Mean(xs)
	if err != nil {
		return 0, fmt.Errorf("center x: %w", err)
	}
	return center, nil
}

func goldenRatio(points []domain.Point) float64 {
	browY := (points[domain.LandmarkLeftBrowTop].Y + points[domain.LandmarkRightBrowTop].Y) / 2
	height := points[domain.LandmarkChin].Y - browY
	width := points[domain.LandmarkJawRight].X - points[domain.LandmarkJawLeft].X

	if width > 0 {
		return math.Abs(height / width)
	}
	return 0
}
