package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	// ErrNotFound covers both unknown ids and ids owned by another user.
	ErrNotFound = errors.New("not found")

	ErrValidation            = errors.New("invalid input")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("already exists")
)

// Validationf returns an error wrapping ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
