// Package pigo is an in-process face detector built on the pigo pixel
// intensity comparison cascade. It needs no native libraries.
package pigo

import (
	"context"
	"fmt"
	"image"
	"os"

	pigocore "github.com/esimov/pigo/core"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
)

// Params tune the cascade scan
type Params struct {
	MinSize      int
	MaxSize      int
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	// MinQuality drops clustered detections with a lower score
	MinQuality float32
}

// DefaultParams scans faces from 100px up with a 1.1 scale step
func DefaultParams() Params {
	return Params{
		MinSize:      100,
		MaxSize:      1000,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
	}
}

type classifier interface {
	RunCascade(cp pigocore.CascadeParams, angle float64) []pigocore.Detection
	ClusterDetections(detections []pigocore.Detection, iouThreshold float64) []pigocore.Detection
}

// Detector implements provider.FaceDetector with a pigo cascade
type Detector struct {
	classifier classifier
	params     Params
}

var _ provider.FaceDetector = (*Detector)(nil)

// NewDetector loads a facefinder cascade from path
func NewDetector(path string, params Params) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cascade file: %w", err)
	}
	return NewDetectorFromBytes(data, params)
}

// NewDetectorFromBytes unpacks an in-memory cascade
func NewDetectorFromBytes(cascade []byte, params Params) (*Detector, error) {
	classifier, err := pigocore.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}
	return &Detector{classifier: classifier, params: params}, nil
}

// DetectFaces runs the cascade on the grayscale pixels of img
func (d *Detector) DetectFaces(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := pigocore.ImgToNRGBA(img)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	cp := pigocore.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     min(d.params.MaxSize, max(cols, rows)),
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigocore.ImageParams{
			Pixels: pigocore.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(cp, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.params.IoUThreshold)

	return toBoxes(dets, img.Bounds(), d.params.MinQuality), nil
}

// toBoxes converts centered square detections to pixel boxes clipped to bounds
func toBoxes(dets []pigocore.Detection, bounds image.Rectangle, minQuality float32) []domain.BoundingBox {
	boxes := make([]domain.BoundingBox, 0, len(dets))
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}

		half := det.Scale / 2
		x := bounds.Min.X + det.Col - half
		y := bounds.Min.Y + det.Row - half
		r := image.Rect(x, y, x+det.Scale, y+det.Scale).Intersect(bounds)
		if r.Empty() {
			continue
		}

		boxes = append(boxes, domain.BoundingBox{
			X:      r.Min.X,
			Y:      r.Min.Y,
			Width:  r.Dx(),
			Height: r.Dy(),
		})
	}
	return boxes
}
