package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of the input-validation error taxonomy.
// All shape/validation failures wrap it so callers can match the whole
// family with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrEmptySeries   = fmt.Errorf("%w: empty series", ErrInvalidInput)
	ErrInvalidWindow = fmt.Errorf("%w: window length must be positive", ErrInvalidInput)
	ErrInvalidShift  = fmt.Errorf("%w: shift must be non-negative", ErrInvalidInput)
	ErrMalformedTime = fmt.Errorf("%w: malformed time value", ErrInvalidInput)
	ErrMalformedBar  = fmt.Errorf("%w: malformed bar", ErrInvalidInput)
	ErrInvalidTicker = fmt.Errorf("%w: invalid ticker", ErrInvalidInput)
)
