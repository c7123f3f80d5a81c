package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	// registers the WebP decoder with image.Decode
	_ "golang.org/x/image/webp"
)

// ErrEmptyFrame is returned when no bytes were received for a frame
var ErrEmptyFrame = errors.New("empty frame")

const jpegQuality = 85

// Decode reads a JPEG, PNG, GIF or WebP frame. EXIF orientation is applied.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

// Mirror flips a frame horizontally so the preview behaves like a mirror
func Mirror(img image.Image) image.Image {
	return imaging.FlipH(img)
}

// EncodeJPEG writes img as a JPEG, used for the live preview stream
func EncodeJPEG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
}

// EncodePNG writes img as a lossless PNG, used for the annotated result
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
