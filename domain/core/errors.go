package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: bad contamination, unknown method, empty input
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Input errors: malformed or empty datasets and matrices
	ErrInvalidInput = errors.New("invalid input")

	// Encoding errors: a timestamp column value that does not parse
	ErrEncodingFailure = errors.New("encoding failure")

	ErrColumnNotFound = fmt.Errorf("%w: column not found", ErrInvalidInput)
	ErrEmptyDataset   = fmt.Errorf("%w: dataset has no rows", ErrInvalidConfiguration)
)

// Error constructors with context
func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, field, reason)
}

func NewInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

func NewEncodingError(column string, row int, value string) error {
	return fmt.Errorf("%w: column %s row %d: cannot parse %q as timestamp", ErrEncodingFailure, column, row, value)
}

// ValidateContamination checks that c lies in (0, 0.5].
func ValidateContamination(c float64) error {
	if !(c > 0 && c <= 0.5) {
		return NewConfigurationError("contamination", fmt.Sprintf("%v is outside (0, 0.5]", c))
	}
	return nil
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsEncodingError(err error) bool {
	return errors.Is(err, ErrEncodingFailure)
}
