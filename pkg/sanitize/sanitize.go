// Package sanitize filters raw user input before it reaches the radix package.
// The filters mirror what an interactive form does on each keystroke and on focus
// change, and Form turns the filtered fields into a validated radix.Request.
package sanitize

import (
	"strconv"
	"strings"

	"github.com/Suhaibinator/SConvert/pkg/radix"
)

// Digits keeps only alphanumeric characters and the first radix point.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	seenPoint := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == radix.RadixPoint:
			if seenPoint {
				continue
			}
			seenPoint = true
		case radix.DigitValue(c) < 0:
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// DigitsForBase is Digits with every character that is not a digit of base
// dropped as well. A base-1 tally keeps only '0' and no radix point.
// An out-of-range base filters nothing beyond Digits.
func DigitsForBase(s string, base int) string {
	s = Digits(s)
	if radix.ValidateBase(base) != nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == radix.RadixPoint {
			if base > 1 {
				b.WriteByte(c)
			}
			continue
		}
		if radix.DigitValue(c) < base {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Base applies the keystroke rules of a base field: non-digits are stripped,
// anything above radix.MaxBase becomes "36" and zero becomes empty.
// A lone "1" is kept so the user can go on to type "16"; see FinalizeBase.
func Base(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return ""
	}
	if len(digits) > 2 {
		return strconv.Itoa(radix.MaxBase)
	}
	if n, _ := strconv.Atoi(digits); n > radix.MaxBase {
		return strconv.Itoa(radix.MaxBase)
	}
	return digits
}

// FinalizeBase applies the focus-out rule of a base field: a value of "1" is
// raised to "2" unless allowUnary is set. Other values go through Base.
func FinalizeBase(s string, allowUnary bool) string {
	s = Base(s)
	if s == "1" && !allowUnary {
		return "2"
	}
	return s
}

// Precision parses a precision field and clamps it to [0, max]. Input that is
// not a number yields def.
func Precision(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
