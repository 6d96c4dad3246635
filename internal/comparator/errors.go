package comparator

import "errors"

var (
	// ErrNilImage is returned when an image or its pixel buffer is missing.
	ErrNilImage = errors.New("comparator: nil image")
	// ErrEmptyImage is returned for images with no pixels.
	ErrEmptyImage = errors.New("comparator: empty image")
	// ErrShortBuffer is returned when a packed buffer cannot hold the declared geometry.
	ErrShortBuffer = errors.New("comparator: pixel buffer too short")
	// ErrUnknownLayout is returned for a layout NewPacked cannot read.
	ErrUnknownLayout = errors.New("comparator: unknown pixel layout")
	// ErrInvalidTolerance is returned when the tolerance is outside [0, 1].
	ErrInvalidTolerance = errors.New("comparator: tolerance must be within [0, 1]")
	// ErrUnknownMetric is returned by NewMetric for an unrecognised name.
	ErrUnknownMetric = errors.New("comparator: unknown metric")
)
