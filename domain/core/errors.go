package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Page errors
	ErrMissingElement = errors.New("element not found")
	ErrNotATable      = errors.New("element is not a table")
	ErrIDConflict     = errors.New("id already used by another element")

	// Payload errors
	ErrMalformedRow     = errors.New("malformed row")
	ErrMalformedPayload = errors.New("malformed payload")

	// Delivery errors
	ErrTransport    = errors.New("transport error")
	ErrNotConnected = fmt.Errorf("%w: not connected", ErrTransport)
	ErrClosed       = fmt.Errorf("%w: client closed", ErrTransport)
)

// Error constructors with context
func NewMissingElementError(ids ...string) error {
	return fmt.Errorf("%w: %s", ErrMissingElement, strings.Join(ids, ", "))
}

func NewMalformedRowError(key string, fields, want int) error {
	return fmt.Errorf("%w %q: %d fields, want %d", ErrMalformedRow, key, fields, want)
}

func NewTransportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}

// Error checking helpers
func IsMissingElementError(err error) bool {
	return errors.Is(err, ErrMissingElement)
}

func IsMalformedRowError(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}

func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}
