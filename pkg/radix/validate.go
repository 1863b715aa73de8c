package radix

import "fmt"

const (
	// MinBase is the smallest accepted base. Base 1 is a tally, not a positional system.
	MinBase = 1
	// MaxBase is the largest base expressible with the 0-9A-Z alphabet.
	MaxBase = 36
	// MaxPrecision bounds the number of fractional digits an encoder will emit.
	MaxPrecision = 64
	// DefaultPrecision is the fractional precision used by Convert.
	DefaultPrecision = 8
)

// ValidateBase reports whether base lies in [MinBase, MaxBase].
func ValidateBase(base int) error {
	if base < MinBase || base > MaxBase {
		return inputError(ErrInvalidBase, "", base, -1)
	}
	return nil
}

// ValidatePrecision reports whether precision lies in [0, MaxPrecision].
func ValidatePrecision(precision int) error {
	if precision < 0 || precision > MaxPrecision {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidPrecision, precision, MaxPrecision)
	}
	return nil
}

// Validate checks that digits is a well-formed number in base: non-empty, at
// least one digit, at most one radix point, and every digit value below base.
// A base-1 tally may not contain a radix point.
func Validate(digits string, base int) error {
	if err := ValidateBase(base); err != nil {
		return err
	}
	if digits == "" {
		return inputError(ErrMalformedNumber, digits, base, -1)
	}

	points, count := 0, 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c == RadixPoint {
			points++
			if points > 1 || base == 1 {
				return inputError(ErrMalformedNumber, digits, base, i)
			}
			continue
		}
		if v := DigitValue(c); v < 0 || v >= base {
			return inputError(ErrInvalidDigit, digits, base, i)
		}
		count++
	}
	if count == 0 {
		return inputError(ErrMalformedNumber, digits, base, -1)
	}
	return nil
}
