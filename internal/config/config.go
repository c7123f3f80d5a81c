package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Detector and landmark backends
const (
	BackendMock        = "mock"
	BackendPigo        = "pigo"
	BackendShapeServer = "shapeserver"
	BackendRekognition = "rekognition"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogFile     string `envconfig:"LOG_FILE"`

	// Providers
	Detector       string `envconfig:"DETECTOR" default:"mock"`
	Landmarks      string `envconfig:"LANDMARKS" default:"mock"`
	CascadePath    string `envconfig:"CASCADE_PATH" default:"./models/facefinder"`
	ShapeServerURL string `envconfig:"SHAPE_SERVER_URL" default:"http://localhost:5005"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
	MinFaceSize    int    `envconfig:"MIN_FACE_SIZE" default:"100"`

	// Sessions
	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`

	// Analysis limits
	AnalyzeRate   float64 `envconfig:"ANALYZE_RATE" default:"1"`
	AnalyzeBurst  int     `envconfig:"ANALYZE_BURST" default:"3"`
	MaxFrameBytes int     `envconfig:"MAX_FRAME_BYTES" default:"5242880"`
	MirrorFrames  bool    `envconfig:"MIRROR_FRAMES" default:"true"`
}

// Load reads a .env file when present, then the process environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// existing variables win over the file
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown backends and non-positive limits
func (c *Config) Validate() error {
	switch c.Detector {
	case BackendMock, BackendPigo, BackendShapeServer, BackendRekognition:
	default:
		return fmt.Errorf("invalid DETECTOR %q (supported: %s, %s, %s, %s)",
			c.Detector, BackendMock, BackendPigo, BackendShapeServer, BackendRekognition)
	}

	switch c.Landmarks {
	case BackendMock, BackendShapeServer:
	default:
		return fmt.Errorf("invalid LANDMARKS %q (supported: %s, %s)", c.Landmarks, BackendMock, BackendShapeServer)
	}

	if c.SessionTTL <= 0 || c.SessionSweepInterval <= 0 {
		return errors.New("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.AnalyzeRate <= 0 || c.AnalyzeBurst <= 0 {
		return errors.New("ANALYZE_RATE and ANALYZE_BURST must be positive")
	}
	if c.MaxFrameBytes <= 0 {
		return errors.New("MAX_FRAME_BYTES must be positive")
	}
	if c.MinFaceSize < 0 {
		return errors.New("MIN_FACE_SIZE must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
