package radix

import (
	"math"
	"strconv"
	"strings"
)

// Value is the base-independent form of a number: its magnitude plus whether
// the source representation was written without a radix point.
type Value struct {
	Magnitude float64
	Integer   bool
}

// Decode parses digits written in base into a Value.
//
// Each digit is weighted by base^pos, where pos is 0 for the digit immediately
// left of the radix point and decreases by one per digit scanned left to right.
// Base 10 is parsed directly with strconv. A base-1 tally decodes to the number
// of '0' characters it contains.
func Decode(digits string, base int) (Value, error) {
	if err := Validate(digits, base); err != nil {
		return Value{}, err
	}

	point := strings.IndexByte(digits, RadixPoint)
	v := Value{Integer: point < 0}

	switch base {
	case 1:
		v.Magnitude = float64(len(digits))
	case 10:
		m, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			// Validation leaves ErrRange as the only possible failure.
			return Value{}, inputError(ErrOverflow, digits, base, -1)
		}
		v.Magnitude = m
	default:
		if point < 0 {
			point = len(digits)
		}
		pos := point - 1
		b := float64(base)
		for i := 0; i < len(digits); i++ {
			if digits[i] == RadixPoint {
				continue
			}
			// Zero digits are skipped: far from the radix point the weight
			// overflows to +Inf and 0*Inf would poison the sum with NaN.
			if d := DigitValue(digits[i]); d != 0 {
				// The conversion rounds the product before the add, so no FMA is fused.
				v.Magnitude += float64(float64(d) * math.Pow(b, float64(pos)))
			}
			pos--
		}
	}

	if math.IsInf(v.Magnitude, 0) || math.IsNaN(v.Magnitude) {
		return Value{}, inputError(ErrOverflow, digits, base, -1)
	}
	return v, nil
}
