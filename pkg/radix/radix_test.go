package radix

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// TestConvertScenarios tests conversions with known results
func TestConvertScenarios(t *testing.T) {
	tests := []struct {
		name      string
		digits    string
		from, to  int
		precision int
		want      string
	}{
		{"decimal to binary integer", "999", 10, 2, 8, "1111100111"},
		{"decimal to binary fraction", "123.45", 10, 2, 8, "1111011.01110011"},
		{"binary to decimal integer", "1111100111", 2, 10, 8, "999"},
		{"binary to decimal fraction", "1111.111", 2, 10, 8, "15.875"},
		{"decimal passthrough", "987.654", 10, 10, 8, "987.654"},
		{"decimal to base 36 integer", "555", 10, 36, 8, "FF"},
		{"decimal to base 36 fraction", "123.45", 10, 36, 8, "3F.G7777777"},
		{"base 36 to decimal integer", "ff", 36, 10, 8, "555"},
		{"base 36 to decimal fraction", "adam.heins", 36, 10, 8, "483790.48342465"},
		{"two non-decimal bases", "a123", 11, 30, 8, "ESG"},
		{"same base", "ABC.DEF", 16, 16, 8, "ABC.DEF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertPrecision(tt.digits, tt.from, tt.to, tt.precision)
			if err != nil {
				t.Fatalf("ConvertPrecision(%q, %d, %d, %d) failed: %v", tt.digits, tt.from, tt.to, tt.precision, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestConvertDefaultPrecision tests that Convert uses eight fractional digits
func TestConvertDefaultPrecision(t *testing.T) {
	got, err := Convert("0.1", 10, 2)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "0.00011001" {
		t.Errorf("Expected %q, got %q", "0.00011001", got)
	}
}

// TestRequestConvert tests the value-type form of a conversion
func TestRequestConvert(t *testing.T) {
	req := Request{Digits: "FF", From: 16, To: 2, Precision: 4}
	got, err := req.Convert()
	if err != nil {
		t.Fatalf("Request.Convert failed: %v", err)
	}
	if got != "11111111" {
		t.Errorf("Expected %q, got %q", "11111111", got)
	}
}

// TestConvertZero tests the zero value in several bases
func TestConvertZero(t *testing.T) {
	for _, to := range []int{2, 8, 10, 16, 36} {
		got, err := Convert("0", 10, to)
		if err != nil {
			t.Fatalf("Convert to base %d failed: %v", to, err)
		}
		if got != "0" {
			t.Errorf("Expected %q in base %d, got %q", "0", to, got)
		}
	}

	// A pure fraction keeps its leading zero
	got, err := Convert("0.1", 2, 10)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "0.5" {
		t.Errorf("Expected %q, got %q", "0.5", got)
	}

	got, err = Convert(".8", 16, 2)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "0.1" {
		t.Errorf("Expected %q, got %q", "0.1", got)
	}
}

// TestConvertZeroFraction tests that a fractional part of exactly zero drops the radix point
func TestConvertZeroFraction(t *testing.T) {
	got, err := Convert("12.000", 10, 16)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "C" {
		t.Errorf("Expected %q, got %q", "C", got)
	}
}

// TestConvertPrecisionBudget tests truncation of fractional expansions
func TestConvertPrecisionBudget(t *testing.T) {
	// 1/3 in base 3 is exactly 0.1, but in base 10 it never terminates
	got, err := ConvertPrecision("0.1", 3, 10, 4)
	if err != nil {
		t.Fatalf("ConvertPrecision failed: %v", err)
	}
	if got != "0.3333" {
		t.Errorf("Expected %q, got %q", "0.3333", got)
	}

	// Truncation, not rounding
	got, err = ConvertPrecision("0.2", 3, 10, 3)
	if err != nil {
		t.Fatalf("ConvertPrecision failed: %v", err)
	}
	if got != "0.666" {
		t.Errorf("Expected %q, got %q", "0.666", got)
	}

	// Precision zero drops the fraction entirely
	got, err = ConvertPrecision("123.45", 10, 2, 0)
	if err != nil {
		t.Fatalf("ConvertPrecision failed: %v", err)
	}
	if got != "1111011" {
		t.Errorf("Expected %q, got %q", "1111011", got)
	}

	got, err = ConvertPrecision("1111.111", 2, 10, 0)
	if err != nil {
		t.Fatalf("ConvertPrecision failed: %v", err)
	}
	if got != "15" {
		t.Errorf("Expected %q, got %q", "15", got)
	}

	// An expansion that terminates early is not padded
	got, err = ConvertPrecision("0.5", 10, 2, 8)
	if err != nil {
		t.Fatalf("ConvertPrecision failed: %v", err)
	}
	if got != "0.1" {
		t.Errorf("Expected %q, got %q", "0.1", got)
	}
}

// TestConvertDecimalPassthrough tests that base 10 to base 10 only truncates the fraction
func TestConvertDecimalPassthrough(t *testing.T) {
	tests := []struct {
		digits    string
		precision int
		want      string
	}{
		{"987.654", 8, "987.654"},
		{"987.654", 2, "987.65"},
		{"987.659", 2, "987.65"},
		{"987.654", 0, "987"},
		{"12345678901234567890123", 3, "12345678901234567890123"},
		{"42.", 8, "42"},
		{".5", 0, "0"},
	}

	for _, tt := range tests {
		got, err := ConvertPrecision(tt.digits, 10, 10, tt.precision)
		if err != nil {
			t.Fatalf("ConvertPrecision(%q) failed: %v", tt.digits, err)
		}
		if got != tt.want {
			t.Errorf("Expected %q for %q with precision %d, got %q", tt.want, tt.digits, tt.precision, got)
		}
	}
}

// TestConvertSameBaseCanonical tests that same-base conversion uppercases its input
func TestConvertSameBaseCanonical(t *testing.T) {
	got, err := Convert("abc.def", 16, 16)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "ABC.DEF" {
		t.Errorf("Expected %q, got %q", "ABC.DEF", got)
	}
}

// TestConvertTally tests the base 1 special case in both directions
func TestConvertTally(t *testing.T) {
	got, err := Convert("5", 10, 1)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "00000" {
		t.Errorf("Expected %q, got %q", "00000", got)
	}

	// The fractional part is ignored
	got, err = Convert("11.11", 2, 1)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "000" {
		t.Errorf("Expected %q, got %q", "000", got)
	}

	// Zero is an empty tally
	got, err = Convert("0", 16, 1)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty tally, got %q", got)
	}

	got, err = Convert("0000000", 1, 2)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "111" {
		t.Errorf("Expected %q, got %q", "111", got)
	}

	if _, err := Convert("99999999", 10, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow for an oversized tally, got %v", err)
	}
}

// TestConvertErrors tests that invalid input fails fast with the right kind
func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name      string
		digits    string
		from, to  int
		precision int
		want      error
	}{
		{"source base too small", "1", 0, 10, 8, ErrInvalidBase},
		{"source base too large", "1", 37, 10, 8, ErrInvalidBase},
		{"target base too small", "1", 10, 0, 8, ErrInvalidBase},
		{"target base too large", "1", 10, 37, 8, ErrInvalidBase},
		{"digit equal to base", "102", 2, 10, 8, ErrInvalidDigit},
		{"letter above base", "1G", 16, 10, 8, ErrInvalidDigit},
		{"non alphanumeric", "1-2", 10, 2, 8, ErrInvalidDigit},
		{"sign", "-12", 10, 2, 8, ErrInvalidDigit},
		{"unicode", "1é", 36, 2, 8, ErrInvalidDigit},
		{"empty", "", 10, 2, 8, ErrMalformedNumber},
		{"only a point", ".", 10, 2, 8, ErrMalformedNumber},
		{"two points", "1.2.3", 10, 2, 8, ErrMalformedNumber},
		{"point in a tally", "00.0", 1, 10, 8, ErrMalformedNumber},
		{"negative precision", "1", 10, 2, -1, ErrInvalidPrecision},
		{"excessive precision", "1", 10, 2, MaxPrecision + 1, ErrInvalidPrecision},
		{"same base still validated", "12", 2, 2, 8, ErrInvalidDigit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertPrecision(tt.digits, tt.from, tt.to, tt.precision)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v (result %q)", tt.want, err, got)
			}
			if got != "" {
				t.Errorf("Expected no partial result, got %q", got)
			}
		})
	}
}

// TestInputErrorDetails tests the context carried by InputError
func TestInputErrorDetails(t *testing.T) {
	_, err := Convert("12z4", 16, 10)

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Expected *InputError, got %T", err)
	}
	if inputErr.Pos != 2 {
		t.Errorf("Expected position 2, got %d", inputErr.Pos)
	}
	if inputErr.Base != 16 {
		t.Errorf("Expected base 16, got %d", inputErr.Base)
	}
	if !strings.Contains(err.Error(), "position 2") {
		t.Errorf("Expected error message to mention the position, got %q", err.Error())
	}

	_, err = Convert("1", 40, 10)
	if err == nil || err.Error() != "invalid base: 40" {
		t.Errorf("Expected %q, got %v", "invalid base: 40", err)
	}

	_, err = Convert("", 10, 2)
	if err == nil || err.Error() != "malformed number" {
		t.Errorf("Expected %q, got %v", "malformed number", err)
	}
}

// TestConvertOverflow tests magnitudes that do not fit in a float64
func TestConvertOverflow(t *testing.T) {
	huge := strings.Repeat("Z", 400)
	if _, err := Convert(huge, 36, 10); !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}

	if _, err := Convert("1"+strings.Repeat("0", 400), 10, 2); !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}
}

// TestRoundTrip tests conversions through base 10 and back for terminating expansions
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		digits string
		base   int
	}{
		{"1111100111", 2},
		{"1111.111", 2},
		{"FF", 16},
		{"ABC.8", 16},
		{"777.4", 8},
		{"ZZ.I", 36},
		{"0.1", 2},
	}

	for _, tt := range tests {
		decimal, err := Convert(tt.digits, tt.base, 10)
		if err != nil {
			t.Fatalf("Convert(%q, %d, 10) failed: %v", tt.digits, tt.base, err)
		}
		back, err := Convert(decimal, 10, tt.base)
		if err != nil {
			t.Fatalf("Convert(%q, 10, %d) failed: %v", decimal, tt.base, err)
		}
		if back != tt.digits {
			t.Errorf("Expected %q to survive a round trip through %q, got %q", tt.digits, decimal, back)
		}
	}
}

// TestOutputDigitBound tests that every output digit is valid in the target base
func TestOutputDigitBound(t *testing.T) {
	inputs := []string{"0", "1", "999", "123.45", "0.1", "65535.999", "4294967296.0625"}
	for to := 2; to <= MaxBase; to++ {
		for _, in := range inputs {
			out, err := Convert(in, 10, to)
			if err != nil {
				t.Fatalf("Convert(%q, 10, %d) failed: %v", in, to, err)
			}
			if err := Validate(out, to); err != nil {
				t.Errorf("Output %q of %q is not a valid base %d number: %v", out, in, to, err)
			}
			if out != strings.ToUpper(out) {
				t.Errorf("Expected uppercase output, got %q", out)
			}
		}
	}
}

// TestConvertConcurrent tests that concurrent conversions do not interfere
func TestConvertConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ConvertPrecision("123.45", 10, 36, 8)
			if err != nil {
				errs <- err
				return
			}
			if got != "3F.G7777777" {
				errs <- errors.New("unexpected result " + got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
