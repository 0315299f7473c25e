// Package utils contains the error taxonomy and small helpers shared by the depthtruth packages.
package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned when a caller asks for something outside the known set:
	// a frame index past the enumerated frames, a model file that was never discovered, or an
	// invalid enum value.
	ErrConfiguration = errors.New("configuration error")

	// ErrDecode is returned when a buffer or record does not have the expected shape.
	ErrDecode = errors.New("decode error")
)

// NewConfigurationError returns an error wrapping ErrConfiguration.
func NewConfigurationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// NewDecodeError returns an error wrapping ErrDecode.
func NewDecodeError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecode, format, args...)
}

// NewFrameOutOfRangeError is used when a frame index is outside [0, total).
func NewFrameOutOfRangeError(index, total int) error {
	return NewConfigurationError("frame %d not in set of %d frames", index, total)
}

// NewBufferLengthError is used when a flat buffer does not hold a whole number of records.
func NewBufferLengthError(what string, length, stride int) error {
	return NewDecodeError("%s buffer length %d is not a multiple of %d", what, length, stride)
}

// IOError describes a failed file system or stream operation. It is surfaced to callers
// unchanged and never retried.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// NewIOError wraps err as an IOError. A nil err yields nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOError reports whether err has an IOError in its chain.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
