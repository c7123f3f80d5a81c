package main

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/saturnino-fabrica-de-software/facescan/internal/analysis"
	"github.com/saturnino-fabrica-de-software/facescan/internal/config"
	"github.com/saturnino-fabrica-de-software/facescan/internal/face"
	"github.com/saturnino-fabrica-de-software/facescan/internal/frame"
)

const (
	flagImage       = "image"
	flagOut         = "out"
	flagDetector    = "detector"
	flagLandmarks   = "landmarks"
	flagCascade     = "cascade"
	flagShapeServer = "shape-server"
	flagRegion      = "region"
	flagMinFaceSize = "min-face-size"
	flagMirror      = "mirror"
	flagVerbose     = "verbose"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "facescan",
		Usage: "score face symmetry and proportions on a still image",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "log pipeline details to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "detect the largest face and print its scores",
				UsageText: "facescan analyze --image in.jpg [--out annotated.png]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagImage,
						Aliases:  []string{"i"},
						Usage:    "input image (JPEG, PNG or WebP)",
						Required: true,
					},
					&cli.PathFlag{
						Name:    flagOut,
						Aliases: []string{"o"},
						Usage:   "write the annotated image as PNG",
					},
					&cli.StringFlag{
						Name:    flagDetector,
						Usage:   "face detector: mock, pigo, shapeserver or rekognition",
						Value:   config.BackendMock,
						EnvVars: []string{"DETECTOR"},
					},
					&cli.StringFlag{
						Name:    flagLandmarks,
						Usage:   "landmark predictor: mock or shapeserver",
						Value:   config.BackendMock,
						EnvVars: []string{"LANDMARKS"},
					},
					&cli.PathFlag{
						Name:    flagCascade,
						Usage:   "pigo facefinder cascade file",
						Value:   "./models/facefinder",
						EnvVars: []string{"CASCADE_PATH"},
					},
					&cli.StringFlag{
						Name:    flagShapeServer,
						Usage:   "shape server base URL",
						Value:   "http://localhost:5005",
						EnvVars: []string{"SHAPE_SERVER_URL"},
					},
					&cli.StringFlag{
						Name:    flagRegion,
						Usage:   "AWS region for rekognition",
						Value:   "us-east-1",
						EnvVars: []string{"AWS_REGION"},
					},
					&cli.IntFlag{
						Name:    flagMinFaceSize,
						Usage:   "smallest face side in pixels",
						Value:   100,
						EnvVars: []string{"MIN_FACE_SIZE"},
					},
					&cli.BoolFlag{
						Name:  flagMirror,
						Usage: "flip the image horizontally first, like the live camera",
					},
				},
				Action: analyzeAction,
			},
			{
				Name:   "pairs",
				Usage:  "print the landmark pairs compared by the symmetry score",
				Action: pairsAction,
			},
		},
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool(flagVerbose) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
}

func analyzeAction(c *cli.Context) error {
	cfg := &config.Config{
		Detector:       c.String(flagDetector),
		Landmarks:      c.String(flagLandmarks),
		CascadePath:    c.Path(flagCascade),
		ShapeServerURL: c.String(flagShapeServer),
		AWSRegion:      c.String(flagRegion),
		MinFaceSize:    c.Int(flagMinFaceSize),
	}

	detector, err := face.NewDetector(c.Context, cfg)
	if err != nil {
		return err
	}
	predictor, err := face.NewPredictor(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.Path(flagImage))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img, err := frame.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.Path(flagImage), err)
	}
	if c.Bool(flagMirror) {
		img = frame.Mirror(img)
	}

	result, err := analysis.NewAnalyzer(detector, predictor, newLogger(c)).Analyze(c.Context, img)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if !result.FaceFound {
		fmt.Fprintln(w, "Face not detected. Try again.")
		return nil
	}

	fmt.Fprintf(w, "Symmetry score:     %.2f\n", result.SymmetryScore)
	fmt.Fprintf(w, "Golden ratio score: %.3f\n", result.GoldenRatioScore)
	fmt.Fprintln(w)
	fmt.Fprintln(w, result.Narrative.Title)
	fmt.Fprintln(w, result.Narrative.SymmetryText)
	fmt.Fprintln(w, result.Narrative.RatioText)

	if out := c.Path(flagOut); out != "" {
		if err := writePNG(out, result.Image); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nannotated image written to %s\n", out)
	}
	return nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return frame.EncodePNG(f, img)
}

func pairsAction(c *cli.Context) error {
	return printPairs(c.App.Writer)
}

func printPairs(w io.Writer) error {
	for i, p := range analysis.SymmetryPairs() {
		if _, err := fmt.Fprintf(w, "%2d  %2d <-> %2d\n", i+1, p.Left, p.Right); err != nil {
			return err
		}
	}
	return nil
}
