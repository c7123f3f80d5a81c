package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facescan/internal/config"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider/pigo"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/facescan/internal/provider/shapeserver"
)

// NewDetector creates the FaceDetector selected by cfg.Detector
//
// Environment variables:
//   - DETECTOR: "mock", "pigo", "shapeserver" or "rekognition" (default: "mock")
//   - CASCADE_PATH: pigo facefinder cascade file
//   - SHAPE_SERVER_URL: shape server API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - MIN_FACE_SIZE: smallest face side in pixels, all backends
func NewDetector(ctx context.Context, cfg *config.Config) (provider.FaceDetector, error) {
	switch cfg.Detector {
	case config.BackendMock, "":
		d := mock.NewDetector()
		d.MinFaceSize = cfg.MinFaceSize
		return d, nil

	case config.BackendPigo:
		params := pigo.DefaultParams()
		params.MinSize = cfg.MinFaceSize
		d, err := pigo.NewDetector(cfg.CascadePath, params)
		if err != nil {
			return nil, fmt.Errorf("create pigo detector: %w", err)
		}
		return d, nil

	case config.BackendShapeServer:
		return createShapeServerProvider(cfg), nil

	case config.BackendRekognition:
		rekogConfig := rekognition.DefaultConfig()
		rekogConfig.Region = cfg.AWSRegion
		rekogConfig.MinFaceSize = cfg.MinFaceSize

		d, err := rekognition.NewDetector(ctx, rekogConfig)
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unknown detector type: %s", cfg.Detector)
	}
}

// NewPredictor creates the LandmarkPredictor selected by cfg.Landmarks
func NewPredictor(cfg *config.Config) (provider.LandmarkPredictor, error) {
	switch cfg.Landmarks {
	case config.BackendMock, "":
		return mock.NewPredictor(), nil
	case config.BackendShapeServer:
		return createShapeServerProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown landmark predictor type: %s", cfg.Landmarks)
	}
}

func createShapeServerProvider(cfg *config.Config) *shapeserver.Provider {
	shapeConfig := shapeserver.DefaultConfig()
	if cfg.ShapeServerURL != "" {
		shapeConfig.BaseURL = cfg.ShapeServerURL
	}
	shapeConfig.MinFaceSize = cfg.MinFaceSize

	return shapeserver.NewProvider(shapeConfig)
}
