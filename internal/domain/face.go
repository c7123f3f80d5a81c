package domain

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// LandmarkCount is the size of the standard 68-point face model
const LandmarkCount = 68

// Landmark indices used by the metrics, following the 68-point convention
const (
	LandmarkJawLeft      = 0
	LandmarkChin         = 8
	LandmarkJawRight     = 16
	LandmarkLeftBrowTop  = 19
	LandmarkRightBrowTop = 24
)

// Point is one landmark coordinate in image pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox represents the face area in the image, in pixels
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns width × height
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Rect converts the box to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Narrative holds the fixed texts chosen for a pair of scores
type Narrative struct {
	Title        string `json:"title"`
	SymmetryText string `json:"symmetry_text"`
	RatioText    string `json:"ratio_text"`
}

// AnalysisResult is the outcome of one on-demand analysis. It is built once and
// never mutated afterwards.
type AnalysisResult struct {
	ID               uuid.UUID   `json:"id"`
	FaceFound        bool        `json:"face_found"`
	SymmetryScore    float64     `json:"symmetry_score"`
	GoldenRatioScore float64     `json:"golden_ratio_score"`
	Narrative        Narrative   `json:"narrative"`
	FaceBox          BoundingBox `json:"face_box"`
	Landmarks        []Point     `json:"landmarks,omitempty"`
	AxisX            float64     `json:"axis_x"`
	Image            image.Image `json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
}

// LeaderboardEntry is one recorded score within a session
type LeaderboardEntry struct {
	Username   string    `json:"username"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}
