// Package secmem provides the constant-time byte comparison and buffer
// zeroization primitives shared by every credential type in the kit.
//
// The comparison folds the length difference of the two inputs into the
// accumulator before XOR-ing the byte-wise differences, so its running time
// depends only on the shorter input's length, never on where (or whether)
// the inputs differ. Both hash types in credhash verify through this single
// primitive; do not substitute ad-hoc comparisons.
package secmem

// EqualCT compares a and b in constant time and returns 1 if they are equal
// in both length and content, 0 otherwise. The result is an int so callers
// can combine verdicts with bitwise AND instead of short-circuit boolean
// operators.
func EqualCT(a, b []byte) int {
	return oneIfZero(diffCT(a, b))
}

// diffCT is the accumulator behind EqualCT: the XOR of the lengths OR-ed
// with the XOR of every byte pair over the shorter length. Every position
// contributes to the result, which is what makes the profile observable:
// an implementation that stopped at the first difference would drop the
// contributions of later positions.
func diffCT(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	acc := len(a) ^ len(b)
	for i := 0; i < n; i++ {
		acc |= int(a[i] ^ b[i])
	}
	return acc
}

// Equal reports whether a and b are equal, in constant time.
func Equal(a, b []byte) bool {
	return EqualCT(a, b) == 1
}

// NonZeroCT returns 1 if b contains at least one nonzero byte, 0 otherwise,
// in time dependent only on len(b).
func NonZeroCT(b []byte) int {
	var acc byte
	for i := 0; i < len(b); i++ {
		acc |= b[i]
	}
	return 1 - oneIfZero(int(acc))
}

// IsZero reports whether every byte of b is zero, in constant time.
// The empty slice is considered zero.
func IsZero(b []byte) bool {
	return NonZeroCT(b) == 0
}

// Zero overwrites every byte of each buffer with zero. Nil buffers are
// skipped. The garbage collector never does this on its own; callers who
// hold secret material are responsible for wiping it when done.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		for i := range b {
			b[i] = 0
		}
	}
}

// Move returns a copy of src and wipes src, transferring ownership of the
// secret to the returned buffer.
func Move(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	Zero(src)
	return dst
}

// oneIfZero returns 1 when v == 0 and 0 otherwise, without branching.
// v must be non-negative.
func oneIfZero(v int) int {
	return int((uint64(v) - 1) >> 63)
}
