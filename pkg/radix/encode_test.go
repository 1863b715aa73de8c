package radix

import (
	"errors"
	"math"
	"testing"
)

// TestEncode tests rendering of integer and fractional values
func TestEncode(t *testing.T) {
	tests := []struct {
		v         Value
		base      int
		precision int
		want      string
	}{
		{Value{Magnitude: 999, Integer: true}, 2, 8, "1111100111"},
		{Value{Magnitude: 255, Integer: true}, 16, 8, "FF"},
		{Value{Magnitude: 0, Integer: true}, 7, 8, "0"},
		{Value{Magnitude: 0.5}, 2, 8, "0.1"},
		{Value{Magnitude: 0.75}, 4, 8, "0.3"},
		{Value{Magnitude: 15.875}, 10, 8, "15.875"},
		{Value{Magnitude: 15.875}, 10, 1, "15.8"},
		{Value{Magnitude: 15.875}, 10, 0, "15"},
		{Value{Magnitude: 35.5}, 36, 8, "Z.I"},
		{Value{Magnitude: 4, Integer: true}, 1, 8, "0000"},
		{Value{Magnitude: 1e15, Integer: true}, 16, 8, "38D7EA4C68000"},
	}

	for _, tt := range tests {
		got, err := Encode(tt.v, tt.base, tt.precision)
		if err != nil {
			t.Fatalf("Encode(%+v, %d, %d) failed: %v", tt.v, tt.base, tt.precision, err)
		}
		if got != tt.want {
			t.Errorf("Expected Encode(%+v, %d, %d) to be %q, got %q", tt.v, tt.base, tt.precision, tt.want, got)
		}
	}
}

// TestEncodeIntegerFlag tests that an integer source never gets a radix point
func TestEncodeIntegerFlag(t *testing.T) {
	got, err := Encode(Value{Magnitude: 2.5, Integer: true}, 2, 8)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != "10" {
		t.Errorf("Expected %q, got %q", "10", got)
	}
}

// TestEncodeInvalid tests argument checking in Encode
func TestEncodeInvalid(t *testing.T) {
	if _, err := Encode(Value{Magnitude: 1}, 37, 8); !errors.Is(err, ErrInvalidBase) {
		t.Errorf("Expected ErrInvalidBase, got %v", err)
	}
	if _, err := Encode(Value{Magnitude: 1}, 2, -3); !errors.Is(err, ErrInvalidPrecision) {
		t.Errorf("Expected ErrInvalidPrecision, got %v", err)
	}
	if _, err := Encode(Value{Magnitude: math.Inf(1)}, 2, 8); !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}
	if _, err := Encode(Value{Magnitude: math.NaN()}, 2, 8); !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}
	if _, err := Encode(Value{Magnitude: -1}, 2, 8); !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("Expected ErrMalformedNumber, got %v", err)
	}
}
