package identifier

import "math/bits"

// alphabet is the fixed base-57 digit set: 0-9A-Za-z minus the visually
// ambiguous 0, 1, I, O, and l. Encodings are fixed width, most significant
// digit first, so value order and lexicographic order stay related.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const base = 57

var digitValue = func() (m [256]int8) {
	for i := range m {
		m[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		m[alphabet[i]] = int8(i)
	}
	return
}()

func encode64(v uint64, dst []byte) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = alphabet[v%base]
		v /= base
	}
}

func encode128(hi, lo uint64, dst []byte) {
	for i := len(dst) - 1; i >= 0; i-- {
		qHi := hi / base
		rem := hi % base
		qLo, r := bits.Div64(rem, lo, base)
		dst[i] = alphabet[r]
		hi, lo = qHi, qLo
	}
}

// decode64 folds one digit at a time into a uint64, reporting overflow:
// the widest fixed-width string can encode values above 2^64-1, and those
// never come from encode64.
func decode64(s string) (v uint64, ok bool) {
	for i := 0; i < len(s); i++ {
		d := digitValue[s[i]]
		if d < 0 {
			return 0, false
		}
		carry, next := bits.Mul64(v, base)
		if carry != 0 {
			return 0, false
		}
		var c uint64
		v, c = bits.Add64(next, uint64(d), 0)
		if c != 0 {
			return 0, false
		}
	}
	return v, true
}

func decode128(s string) (hi, lo uint64, ok bool) {
	for i := 0; i < len(s); i++ {
		d := digitValue[s[i]]
		if d < 0 {
			return 0, 0, false
		}
		loCarry, nextLo := bits.Mul64(lo, base)
		hiOverflow, nextHi := bits.Mul64(hi, base)
		if hiOverflow != 0 {
			return 0, 0, false
		}
		nextHi, c := bits.Add64(nextHi, loCarry, 0)
		if c != 0 {
			return 0, 0, false
		}
		nextLo, c = bits.Add64(nextLo, uint64(d), 0)
		nextHi, c = bits.Add64(nextHi, 0, c)
		if c != 0 {
			return 0, 0, false
		}
		hi, lo = nextHi, nextLo
	}
	return hi, lo, true
}
