package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
)

func blackImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	return img
}

func assertColorNear(t *testing.T, want color.RGBA, got color.Color) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	assert.InDelta(t, want.R, uint8(r>>8), 12, "red")
	assert.InDelta(t, want.G, uint8(g>>8), 12, "green")
	assert.InDelta(t, want.B, uint8(b>>8), 12, "blue")
}

func TestAnnotate(t *testing.T) {
	src := blackImage(200, 200)
	box := domain.BoundingBox{X: 50, Y: 50, Width: 100, Height: 100}
	points := []domain.Point{{X: 70.5, Y: 80.5}}

	out := Annotate(src, box, points, 100.3)
	require.NotNil(t, out)
	assert.Equal(t, src.Bounds(), out.Bounds())

	t.Run("source frame untouched", func(t *testing.T) {
		for _, p := range []image.Point{{70, 80}, {100, 120}, {50, 100}} {
			assert.Equal(t, color.RGBA{A: 255}, src.RGBAAt(p.X, p.Y))
		}
	})

	t.Run("landmark dot", func(t *testing.T) {
		assertColorNear(t, LandmarkColor, out.At(70, 80))
	})

	t.Run("symmetry axis spans the box", func(t *testing.T) {
		assertColorNear(t, AxisColor, out.At(100, 120))
		assertColorNear(t, color.RGBA{}, out.At(100, 170))
	})

	t.Run("face box edge", func(t *testing.T) {
		assertColorNear(t, BoxColor, out.At(50, 100))
		assertColorNear(t, color.RGBA{}, out.At(120, 100))
	})
}

func TestOverlay(t *testing.T) {
	src := blackImage(300, 200)
	faces := []Face{
		{Box: domain.BoundingBox{X: 20, Y: 20, Width: 80, Height: 80}},
		{
			Box:    domain.BoundingBox{X: 150, Y: 40, Width: 100, Height: 100},
			Points: []domain.Point{{X: 200.5, Y: 90.5}},
		},
	}

	out := Overlay(src, faces)

	assertColorNear(t, LiveBoxColor, out.At(20, 60))
	assertColorNear(t, LiveBoxColor, out.At(150, 90))
	assertColorNear(t, LiveLandmarkColor, out.At(200, 90))
	assert.Equal(t, color.RGBA{A: 255}, src.RGBAAt(20, 60))
}

func TestOverlay_NoFaces(t *testing.T) {
	src := blackImage(10, 10)
	out := Overlay(src, nil)
	assert.Equal(t, src.Pix, out.Pix)
}
