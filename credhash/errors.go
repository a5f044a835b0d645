package credhash

import "errors"

var (
	// ErrUnsupportedAlgorithm indicates an algorithm name that no registry
	// entry matches.
	ErrUnsupportedAlgorithm = errors.New("credhash: unsupported algorithm")
	// ErrInvalidFormat indicates an encoded credential with a malformed
	// field structure.
	ErrInvalidFormat = errors.New("credhash: invalid encoded form")
	// ErrInvalidLength indicates a salt, key, or hash whose length does not
	// match the algorithm's fixed size.
	ErrInvalidLength = errors.New("credhash: length mismatch")
	// ErrInvalidIterations indicates a non-positive or unparsable iteration
	// count.
	ErrInvalidIterations = errors.New("credhash: iteration count must be >= 1")
	// ErrReservedValue indicates externally supplied all-zero salt or hash
	// material. The all-zero pattern is reserved for the closed/no-value
	// sentinel and must stay unique.
	ErrReservedValue = errors.New("credhash: all-zero salt or hash is reserved")
)
