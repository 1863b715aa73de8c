package radix

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in *InputError) by the conversion functions.
// Callers match them with errors.Is.
var (
	// ErrInvalidBase indicates a base outside [MinBase, MaxBase].
	ErrInvalidBase = errors.New("invalid base")
	// ErrInvalidDigit indicates a character that is not alphanumeric or whose
	// value is not less than the declared base.
	ErrInvalidDigit = errors.New("invalid digit")
	// ErrMalformedNumber indicates an empty digit string, a string with no digits,
	// or more than one radix point.
	ErrMalformedNumber = errors.New("malformed number")
	// ErrInvalidPrecision indicates a fractional precision outside [0, MaxPrecision].
	ErrInvalidPrecision = errors.New("invalid precision")
	// ErrOverflow indicates a magnitude that cannot be held in a float64.
	ErrOverflow = errors.New("value out of range")
)

// InputError describes why an input was rejected.
type InputError struct {
	Err    error  // One of the sentinel errors above
	Digits string // The offending digit string, if any
	Base   int    // The base the input was checked against
	Pos    int    // Byte offset of the offending character, or -1
}

func (e *InputError) Error() string {
	switch {
	case e.Pos >= 0:
		return fmt.Sprintf("%v: %q at position %d in base %d", e.Err, e.Digits[e.Pos], e.Pos, e.Base)
	case e.Digits != "":
		return fmt.Sprintf("%v: %q in base %d", e.Err, e.Digits, e.Base)
	case errors.Is(e.Err, ErrInvalidBase):
		return fmt.Sprintf("%v: %d", e.Err, e.Base)
	default:
		return e.Err.Error()
	}
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputError(err error, digits string, base, pos int) *InputError {
	return &InputError{Err: err, Digits: digits, Base: base, Pos: pos}
}
