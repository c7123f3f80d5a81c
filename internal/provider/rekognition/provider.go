package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/frame"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
)

// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
const maxImageSize = 5 * 1024 * 1024

// Detector implements provider.FaceDetector using AWS Rekognition DetectFaces.
// Rekognition only locates faces here; landmarks come from another backend.
type Detector struct {
	api    API
	config Config
}

var _ provider.FaceDetector = (*Detector)(nil)

// NewDetector creates a detector backed by a real Rekognition client
func NewDetector(ctx context.Context, cfg Config) (*Detector, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewDetectorWithAPI(client, cfg), nil
}

// NewDetectorWithAPI creates a detector over any API implementation
func NewDetectorWithAPI(api API, cfg Config) *Detector {
	return &Detector{api: api, config: cfg}
}

// DetectFaces sends img as JPEG and converts the ratio boxes to pixels.
// Returns an empty slice if no faces are detected (not an error).
func (d *Detector) DetectFaces(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	var buf bytes.Buffer
	if err := frame.EncodeJPEG(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if buf.Len() > maxImageSize {
		return nil, fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, buf.Len(), maxImageSize)
	}

	output, err := d.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: buf.Bytes()},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", classifyError(err))
	}

	bounds := img.Bounds()
	boxes := make([]domain.BoundingBox, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}
		if aws.ToFloat32(detail.Confidence) < d.config.MinConfidence {
			continue
		}

		box := toPixels(detail.BoundingBox, bounds)
		if box.Width < d.config.MinFaceSize || box.Height < d.config.MinFaceSize {
			continue
		}
		boxes = append(boxes, box)
	}

	return boxes, nil
}

// toPixels converts a Rekognition box (ratios of the image size, possibly
// extending past the edges) to a pixel box clipped to bounds.
func toPixels(bb *types.BoundingBox, bounds image.Rectangle) domain.BoundingBox {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	left := bounds.Min.X + int(math.Round(float64(aws.ToFloat32(bb.Left))*w))
	top := bounds.Min.Y + int(math.Round(float64(aws.ToFloat32(bb.Top))*h))
	right := left + int(math.Round(float64(aws.ToFloat32(bb.Width))*w))
	bottom := top + int(math.Round(float64(aws.ToFloat32(bb.Height))*h))

	r := image.Rect(left, top, right, bottom).Intersect(bounds)
	return domain.BoundingBox{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}
