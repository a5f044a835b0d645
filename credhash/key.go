package credhash

import (
	"fmt"
	"strings"

	"github.com/credforge/credkit/secmem"
)

// HashedKey is an immutable digest of a cryptographically random opaque
// key. Unlike HashedPassword there is no salt and no stretching: the key
// itself carries full entropy.
//
// Close semantics mirror HashedPassword: wiping is in place, idempotent,
// and a closed value equals nothing.
type HashedKey struct {
	algorithm KeyAlgorithm
	hash      []byte
}

// NewHashedKey builds a HashedKey from its parts, taking ownership of hash:
// the buffer is copied and the original wiped. On validation failure the
// input buffer is wiped before the error is returned.
func NewHashedKey(algorithm KeyAlgorithm, hash []byte) (*HashedKey, error) {
	if err := validateKey(algorithm, hash); err != nil {
		secmem.Zero(hash)
		return nil, err
	}
	return &HashedKey{algorithm: algorithm, hash: secmem.Move(hash)}, nil
}

func validateKey(algorithm KeyAlgorithm, hash []byte) error {
	if !algorithm.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(algorithm))
	}
	if len(hash) != algorithm.HashBytes() {
		return fmt.Errorf("%w: hash is %d bytes, %s requires %d",
			ErrInvalidLength, len(hash), algorithm, algorithm.HashBytes())
	}
	if secmem.IsZero(hash) {
		return ErrReservedValue
	}
	return nil
}

// HashKey digests the plaintext key with the given algorithm and wraps the
// result. The key must be exactly algorithm.KeyBytes long; the caller keeps
// ownership of it.
func HashKey(algorithm KeyAlgorithm, key []byte) (*HashedKey, error) {
	hash, err := algorithm.Hash(key)
	if err != nil {
		return nil, err
	}
	return NewHashedKey(algorithm, hash)
}

// NoKey returns the distinguished "no key set" value.
func NoKey() *HashedKey {
	return &HashedKey{
		algorithm: RecommendedKeyAlgorithm,
		hash:      make([]byte, RecommendedKeyAlgorithm.HashBytes()),
	}
}

// ParseKey decodes the persisted form produced by String. The empty string
// decodes to (nil, nil); the sentinel decodes to NoKey.
func ParseKey(s string) (*HashedKey, error) {
	if s == "" {
		return nil, nil
	}
	if s == Sentinel {
		return NoKey(), nil
	}
	parts := strings.Split(s, Separator)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: want 2 fields, got %d", ErrInvalidFormat, len(parts))
	}
	algorithm, err := LookupKeyAlgorithm(parts[0])
	if err != nil {
		return nil, err
	}
	hash, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", ErrInvalidFormat, err)
	}
	if len(hash) != algorithm.HashBytes() {
		return nil, fmt.Errorf("%w: hash is %d bytes, %s requires %d",
			ErrInvalidLength, len(hash), algorithm, algorithm.HashBytes())
	}
	if secmem.IsZero(hash) {
		return nil, ErrReservedValue
	}
	return &HashedKey{algorithm: algorithm, hash: hash}, nil
}

// Algorithm returns the digest algorithm this hash was made with.
func (k *HashedKey) Algorithm() KeyAlgorithm { return k.algorithm }

// String encodes the value for persistence. A closed instance encodes to
// the sentinel.
func (k *HashedKey) String() string {
	if k.IsClosed() {
		return Sentinel
	}
	return k.algorithm.String() + Separator + b64.EncodeToString(k.hash)
}

// Equal reports whether both hashes were produced by the same algorithm
// from the same key, comparing digests in constant time. Either side being
// closed makes the result false, folded in with bitwise AND rather than a
// short-circuit branch.
func (k *HashedKey) Equal(other *HashedKey) bool {
	if other == nil || k.algorithm != other.algorithm {
		return false
	}
	return secmem.NonZeroCT(k.hash)&
		secmem.NonZeroCT(other.hash)&
		secmem.EqualCT(k.hash, other.hash) == 1
}

// Matches digests the candidate plaintext key and compares it to the
// stored hash in constant time. A closed instance matches nothing.
func (k *HashedKey) Matches(key []byte) bool {
	derived, err := k.algorithm.Hash(key)
	if err != nil {
		return false
	}
	defer secmem.Zero(derived)
	return secmem.NonZeroCT(k.hash)&secmem.EqualCT(k.hash, derived) == 1
}

// IsClosed reports whether the hash buffer has been wiped (or the value is
// the no-key sentinel).
func (k *HashedKey) IsClosed() bool {
	return secmem.IsZero(k.hash)
}

// Close wipes the hash in place. Idempotent.
func (k *HashedKey) Close() {
	secmem.Zero(k.hash)
}
