// Package clipboard defines the clipboard used to copy history output.
package clipboard

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when no clipboard is reachable.
var ErrUnsupported = errors.New("clipboard not available")

// Clipboard reads and writes plain text.
type Clipboard interface {
	Read() ([]byte, error)
	Write(data []byte) error
	IsSupported() bool
}

// Copy writes text to cb and returns the number of bytes copied.
func Copy(cb Clipboard, text string) (int, error) {
	if cb == nil || !cb.IsSupported() {
		return 0, ErrUnsupported
	}
	if err := cb.Write([]byte(text)); err != nil {
		return 0, fmt.Errorf("failed to write clipboard: %w", err)
	}
	return len(text), nil
}

// Paste returns the clipboard text.
func Paste(cb Clipboard) (string, error) {
	if cb == nil || !cb.IsSupported() {
		return "", ErrUnsupported
	}
	data, err := cb.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return string(data), nil
}
