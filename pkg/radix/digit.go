package radix

// alphabet maps a digit value to its canonical (uppercase) character.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RadixPoint separates the integer digits from the fractional digits.
const RadixPoint = '.'

// digitValues maps every byte to its digit value, or -1 when the byte is not
// a digit in any supported base.
var digitValues = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for v := 0; v < len(alphabet); v++ {
		c := alphabet[v]
		t[c] = int8(v)
		if c >= 'A' && c <= 'Z' {
			t[c+'a'-'A'] = int8(v)
		}
	}
	return t
}()

// DigitValue returns the value of a single digit character: '0'-'9' map to 0-9
// and 'A'-'Z' (either case) map to 10-35. Any other byte yields -1.
func DigitValue(c byte) int {
	return int(digitValues[c])
}

// DigitChar returns the uppercase character for a digit value in [0, 35].
func DigitChar(v int) (byte, error) {
	if v < 0 || v >= len(alphabet) {
		return 0, ErrInvalidDigit
	}
	return alphabet[v], nil
}
