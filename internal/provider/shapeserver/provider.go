package shapeserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/samber/lo"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/frame"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
)

// Provider implements both provider.FaceDetector and provider.LandmarkPredictor
// over the shape server HTTP API
type Provider struct {
	client *Client
}

var (
	_ provider.FaceDetector      = (*Provider)(nil)
	_ provider.LandmarkPredictor = (*Provider)(nil)
)

// NewProvider creates a new shape server provider
func NewProvider(config Config) *Provider {
	return &Provider{client: NewClient(config)}
}

// DetectFaces returns the face rectangles found by the server's cascade
func (p *Provider) DetectFaces(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	encoded, err := encodeImage(img)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Detect(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("shape server detect: %w", err)
	}

	return lo.Map(resp.Faces, func(b Box, _ int) domain.BoundingBox {
		return domain.BoundingBox{X: b.X, Y: b.Y, Width: b.W, Height: b.H}
	}), nil
}

// PredictLandmarks asks the shape predictor for the 68 points inside box
func (p *Provider) PredictLandmarks(ctx context.Context, img image.Image, box domain.BoundingBox) ([]domain.Point, error) {
	encoded, err := encodeImage(img)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Landmarks(ctx, encoded, Box{X: box.X, Y: box.Y, W: box.Width, H: box.Height})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", provider.ErrNoLandmarks, se.Body)
		}
		return nil, fmt.Errorf("shape server landmarks: %w", err)
	}

	if len(resp.Points) != domain.LandmarkCount {
		return nil, fmt.Errorf("%w: expected %d points, got %d", ErrInvalidResponse, domain.LandmarkCount, len(resp.Points))
	}

	return lo.Map(resp.Points, func(p LandmarkPoint, _ int) domain.Point {
		return domain.Point{X: p.X, Y: p.Y}
	}), nil
}

func encodeImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := frame.EncodeJPEG(&buf, img); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
