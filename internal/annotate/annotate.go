// Package annotate draws detection overlays onto copies of camera frames.
package annotate

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

var (
	BoxColor      = color.RGBA{R: 203, G: 192, B: 255, A: 255}
	LandmarkColor = color.RGBA{R: 255, G: 255, A: 255}
	AxisColor     = color.RGBA{G: 255, A: 255}

	LiveBoxColor      = color.RGBA{G: 255, A: 255}
	LiveLandmarkColor = color.RGBA{R: 255, G: 213, A: 255}
)

const (
	boxLineWidth   = 2
	axisLineWidth  = 1
	landmarkRadius = 2
)

// Face is one detection to overlay: its box and, when known, its landmarks
type Face struct {
	Box    domain.BoundingBox
	Points []domain.Point
}

// Annotate returns a new image with the face box, one dot per landmark and the
// vertical symmetry axis at axisX spanning the box height. img is not modified.
func Annotate(img image.Image, box domain.BoundingBox, points []domain.Point, axisX float64) *image.RGBA {
	dc := gg.NewContextForImage(img)

	for _, p := range points {
		drawDot(dc, p, LandmarkColor)
	}
	drawBox(dc, box, BoxColor)

	// pixel-center aligned so a 1px line covers exactly one column
	x := float64(int(axisX)) + 0.5
	dc.SetColor(AxisColor)
	dc.SetLineWidth(axisLineWidth)
	dc.DrawLine(x, float64(box.Y), x, float64(box.Y+box.Height))
	dc.Stroke()

	return toRGBA(dc.Image())
}

// Overlay is the lighter live-preview drawing: every face box plus its landmarks.
func Overlay(img image.Image, faces []Face) *image.RGBA {
	dc := gg.NewContextForImage(img)

	for _, f := range faces {
		drawBox(dc, f.Box, LiveBoxColor)
		for _, p := range f.Points {
			drawDot(dc, p, LiveLandmarkColor)
		}
	}

	return toRGBA(dc.Image())
}

func drawDot(dc *gg.Context, p domain.Point, c color.Color) {
	dc.SetColor(c)
	dc.DrawCircle(p.X, p.Y, landmarkRadius)
	dc.Fill()
}

func drawBox(dc *gg.Context, box domain.BoundingBox, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(boxLineWidth)
	dc.DrawRectangle(float64(box.X), float64(box.Y), float64(box.Width), float64(box.Height))
	dc.Stroke()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	return out
}
