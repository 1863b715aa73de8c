package radix

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MaxTally caps the length of a base-1 rendering.
const MaxTally = 1 << 16

// Encode renders v in base with at most precision fractional digits.
//
// Fractional digits are truncated, never rounded, and an expansion that
// terminates early is not padded with zeros. Integer values and values whose
// fractional part is exactly zero are rendered without a radix point.
//
// Base 10 is formatted directly from the float64. Base 1 renders a tally of
// floor(magnitude) '0' characters; the fractional part is dropped.
func Encode(v Value, base, precision int) (string, error) {
	if err := ValidateBase(base); err != nil {
		return "", err
	}
	if err := ValidatePrecision(precision); err != nil {
		return "", err
	}

	m := v.Magnitude
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return "", fmt.Errorf("%w: %v", ErrOverflow, m)
	}
	if m < 0 {
		return "", fmt.Errorf("%w: negative magnitude %v", ErrMalformedNumber, m)
	}

	switch base {
	case 1:
		n := math.Floor(m)
		if n > MaxTally {
			return "", fmt.Errorf("%w: tally of %v exceeds %d", ErrOverflow, n, MaxTally)
		}
		return strings.Repeat("0", int(n)), nil
	case 10:
		return truncateFraction(strconv.FormatFloat(m, 'f', -1, 64), precision, true), nil
	}
	return encodePositional(v, float64(base), precision), nil
}

func encodePositional(v Value, b float64, precision int) string {
	intPart := math.Floor(v.Magnitude)
	fracPart := v.Magnitude - intPart

	var out []byte
	if intPart == 0 {
		out = append(out, '0')
	}
	for intPart > 0 {
		out = append(out, alphabet[int(math.Mod(intPart, b))])
		intPart = math.Floor(intPart / b)
	}
	slices.Reverse(out)

	if v.Integer || fracPart == 0 || precision == 0 {
		return string(out)
	}

	out = append(out, RadixPoint)
	for i := 0; i < precision && fracPart != 0; i++ {
		fracPart = float64(fracPart * b)
		d := math.Floor(fracPart)
		if d >= b {
			d = b - 1
		}
		out = append(out, alphabet[int(d)])
		fracPart -= d
	}
	return string(out)
}

// truncateFraction cuts s to at most precision digits after the radix point
// and drops a dangling point. With trimZeros, trailing fractional zeros go too.
func truncateFraction(s string, precision int, trimZeros bool) string {
	point := strings.IndexByte(s, RadixPoint)
	if point < 0 {
		return s
	}
	if end := point + 1 + precision; end < len(s) {
		s = s[:end]
	}
	if trimZeros {
		s = strings.TrimRight(s, "0")
	}
	return strings.TrimSuffix(s, string(RadixPoint))
}
