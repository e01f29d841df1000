package watermark

import (
	"errors"
	"fmt"
)

// Accepted font sizes, inclusive.
const (
	MinFontSize = 1
	MaxFontSize = 200
)

var (
	// ErrEmptyText is returned when there is nothing to draw.
	ErrEmptyText = errors.New("watermark text must not be empty")
	// ErrFontSize is returned for sizes outside MinFontSize..MaxFontSize.
	ErrFontSize  = fmt.Errorf("font size must be between %d and %d", MinFontSize, MaxFontSize)
)

// DecodeError is returned when a source image cannot be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when the destination image cannot be written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func validateText(text string, size int) error {
	if text == "" {
		return ErrEmptyText
	}
	if size < MinFontSize || size > MaxFontSize {
		return fmt.Errorf("%w: got %d", ErrFontSize, size)
	}
	return nil
}
