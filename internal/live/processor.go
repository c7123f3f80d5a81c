// Package live turns incoming camera frames into the stored latest frame and
// an overlay preview sent back to the client.
package live

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facescan/internal/domain"
	"github.com/saturnino-fabrica-de-software/facescan/internal/frame"
)

// Previewer draws the live overlay for a frame
type Previewer interface {
	Preview(ctx context.Context, img image.Image) (*image.RGBA, int, error)
}

// Config controls frame handling
type Config struct {
	MaxFrameBytes int
	Mirror        bool
}

// Processor handles one live frame at a time per caller
type Processor struct {
	previewer Previewer
	config    Config
	logger    *slog.Logger
}

// NewProcessor creates a live frame processor
func NewProcessor(previewer Previewer, config Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		previewer: previewer,
		config:    config,
		logger:    logger,
	}
}

// Process decodes data, mirrors it when configured, publishes it to cell and
// returns the JPEG preview. The frame is published before the preview is drawn,
// so a failing detector never starves the analysis path. A failed preview
// falls back to the plain frame.
func (p *Processor) Process(ctx context.Context, cell *frame.Cell, data []byte) ([]byte, error) {
	if p.config.MaxFrameBytes > 0 && len(data) > p.config.MaxFrameBytes {
		return nil, domain.ErrInvalidImage.WithError(
			fmt.Errorf("frame is %d bytes, maximum %d", len(data), p.config.MaxFrameBytes))
	}

	img, err := frame.Decode(data)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	if p.config.Mirror {
		img = frame.Mirror(img)
	}

	cell.Store(img)

	var preview image.Image = img
	overlay, faces, err := p.previewer.Preview(ctx, img)
	if err != nil {
		p.logger.WarnContext(ctx, "live preview failed", "error", err)
	} else {
		preview = overlay
		p.logger.DebugContext(ctx, "live frame processed", "faces", faces)
	}

	var buf bytes.Buffer
	if err := frame.EncodeJPEG(&buf, preview); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
