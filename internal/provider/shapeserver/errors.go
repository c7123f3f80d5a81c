package shapeserver

import "errors"

var (
	ErrShapeServerUnavailable = errors.New("shape server unavailable")
	ErrInvalidResponse        = errors.New("invalid response from shape server")
	ErrInvalidImageFormat     = errors.New("invalid image format for shape server")
)
