// Package radix converts numbers written as digit strings between integer bases 1 through 36.
// Digits above 9 are the letters A-Z (case-insensitive on input, uppercase on output) and a
// single '.' separates integer from fractional digits.
//
// Values travel between bases as float64, so precision is bounded: fractional expansions are
// truncated to a digit budget and very large magnitudes lose their low-order digits.
// Every function in this package is pure and safe for concurrent use.
package radix

import "strings"

// Request describes a single conversion.
type Request struct {
	Digits    string // Number to convert, written in base From
	From      int    // Base of Digits
	To        int    // Base of the result
	Precision int    // Maximum number of fractional digits in the result
}

// Convert performs the conversion described by r.
func (r Request) Convert() (string, error) {
	return ConvertPrecision(r.Digits, r.From, r.To, r.Precision)
}

// Convert converts digits from base from to base to using DefaultPrecision.
func Convert(digits string, from, to int) (string, error) {
	return ConvertPrecision(digits, from, to, DefaultPrecision)
}

// ConvertPrecision converts digits from base from to base to, emitting at most
// precision fractional digits. Converting to the same base returns the
// canonical form of digits (see Canonical) rather than a float64 round trip.
func ConvertPrecision(digits string, from, to, precision int) (string, error) {
	if err := ValidateBase(to); err != nil {
		return "", err
	}
	if err := ValidatePrecision(precision); err != nil {
		return "", err
	}
	if from == to {
		return Canonical(digits, from, precision)
	}

	v, err := Decode(digits, from)
	if err != nil {
		return "", err
	}
	return Encode(v, to, precision)
}

// Canonical returns digits with letters uppercased, fractional digits truncated
// to precision and any dangling radix point removed. The integer digits are
// left untouched, leading zeros included.
func Canonical(digits string, base, precision int) (string, error) {
	if err := Validate(digits, base); err != nil {
		return "", err
	}
	if err := ValidatePrecision(precision); err != nil {
		return "", err
	}
	out := truncateFraction(strings.ToUpper(digits), precision, false)
	if out == "" {
		// ".5" truncated to zero fractional digits
		out = "0"
	}
	return out, nil
}
