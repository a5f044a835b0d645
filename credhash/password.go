package credhash

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/credforge/credkit/secmem"
)

// Separator divides the fields of an encoded credential. It does not occur
// in algorithm names or in the unpadded URL-safe base64 alphabet, so the
// encoded string needs no further escaping.
const Separator = "."

// Sentinel is the encoded form of "no credential set": the bare separator.
const Sentinel = Separator

var b64 = base64.RawURLEncoding

// Policy carries the process-wide recommended password-hashing parameters.
// Pass a Policy explicitly when the recommendation comes from configuration;
// DefaultPolicy reflects the compiled-in constants.
type Policy struct {
	Algorithm  Algorithm
	Iterations int
}

// DefaultPolicy returns the compiled-in recommendation.
func DefaultPolicy() Policy {
	return Policy{Algorithm: RecommendedAlgorithm, Iterations: RecommendedIterations}
}

// HashedPassword is an immutable salted, iterated password hash.
//
// Instances are safe for concurrent readers. Close is the single mutation:
// it wipes the salt and hash in place, after which the value behaves as the
// no-password sentinel. Racing Matches against an in-flight Close yields at
// worst a false negative.
type HashedPassword struct {
	algorithm  Algorithm
	salt       []byte
	iterations int
	hash       []byte
}

// NewHashedPassword builds a HashedPassword from its parts, taking
// ownership of salt and hash: both buffers are copied and the originals
// wiped. On any validation failure both input buffers are wiped before the
// error is returned, so a failed construction never leaves secret material
// behind.
func NewHashedPassword(algorithm Algorithm, salt []byte, iterations int, hash []byte) (*HashedPassword, error) {
	if err := validatePassword(algorithm, salt, iterations, hash); err != nil {
		secmem.Zero(salt, hash)
		return nil, err
	}
	return &HashedPassword{
		algorithm:  algorithm,
		salt:       secmem.Move(salt),
		iterations: iterations,
		hash:       secmem.Move(hash),
	}, nil
}

func validatePassword(algorithm Algorithm, salt []byte, iterations int, hash []byte) error {
	if !algorithm.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(algorithm))
	}
	if len(salt) != algorithm.SaltBytes() {
		return fmt.Errorf("%w: salt is %d bytes, %s requires %d",
			ErrInvalidLength, len(salt), algorithm, algorithm.SaltBytes())
	}
	if iterations < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}
	if len(hash) != algorithm.HashBytes() {
		return fmt.Errorf("%w: hash is %d bytes, %s requires %d",
			ErrInvalidLength, len(hash), algorithm, algorithm.HashBytes())
	}
	if secmem.IsZero(salt) || secmem.IsZero(hash) {
		return ErrReservedValue
	}
	return nil
}

// HashPassword hashes a plaintext password with a fresh random salt and the
// default policy.
func HashPassword(password string) (*HashedPassword, error) {
	return HashPasswordWith(DefaultPolicy(), password)
}

// HashPasswordWith hashes a plaintext password with a fresh random salt and
// the given policy.
func HashPasswordWith(policy Policy, password string) (*HashedPassword, error) {
	salt, err := GenerateSalt(policy.Algorithm)
	if err != nil {
		return nil, err
	}
	hash, err := policy.Algorithm.Hash(password, salt, policy.Iterations)
	if err != nil {
		secmem.Zero(salt)
		return nil, err
	}
	return NewHashedPassword(policy.Algorithm, salt, policy.Iterations, hash)
}

// NoPassword returns the distinguished "no password set" value. It matches
// nothing and serializes to the sentinel string.
func NoPassword() *HashedPassword {
	return &HashedPassword{
		algorithm:  RecommendedAlgorithm,
		salt:       make([]byte, RecommendedAlgorithm.SaltBytes()),
		iterations: RecommendedIterations,
		hash:       make([]byte, RecommendedAlgorithm.HashBytes()),
	}
}

// ParsePassword decodes the persisted form produced by String. The empty
// string decodes to (nil, nil); the sentinel decodes to NoPassword. Any
// other malformed input yields a descriptive error.
func ParsePassword(s string) (*HashedPassword, error) {
	if s == "" {
		return nil, nil
	}
	if s == Sentinel {
		return NoPassword(), nil
	}
	parts := strings.Split(s, Separator)
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: want 4 fields, got %d", ErrInvalidFormat, len(parts))
	}
	algorithm, err := LookupAlgorithm(parts[0])
	if err != nil {
		return nil, err
	}
	salt, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidFormat, err)
	}
	if len(salt) != algorithm.SaltBytes() {
		return nil, fmt.Errorf("%w: salt is %d bytes, %s requires %d",
			ErrInvalidLength, len(salt), algorithm, algorithm.SaltBytes())
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIterations, parts[2])
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}
	hash, err := b64.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", ErrInvalidFormat, err)
	}
	if len(hash) != algorithm.HashBytes() {
		return nil, fmt.Errorf("%w: hash is %d bytes, %s requires %d",
			ErrInvalidLength, len(hash), algorithm, algorithm.HashBytes())
	}
	if secmem.IsZero(salt) || secmem.IsZero(hash) {
		return nil, ErrReservedValue
	}
	return &HashedPassword{algorithm: algorithm, salt: salt, iterations: iterations, hash: hash}, nil
}

// Algorithm returns the key-derivation algorithm this hash was made with.
func (p *HashedPassword) Algorithm() Algorithm { return p.algorithm }

// Iterations returns the iteration count this hash was made with.
func (p *HashedPassword) Iterations() int { return p.iterations }

// String encodes the value for persistence. A closed instance encodes to
// the sentinel.
func (p *HashedPassword) String() string {
	if p.IsClosed() {
		return Sentinel
	}
	var sb strings.Builder
	sb.WriteString(p.algorithm.String())
	sb.WriteString(Separator)
	sb.WriteString(b64.EncodeToString(p.salt))
	sb.WriteString(Separator)
	sb.WriteString(strconv.Itoa(p.iterations))
	sb.WriteString(Separator)
	sb.WriteString(b64.EncodeToString(p.hash))
	return sb.String()
}

// Matches re-derives a hash from the candidate password with the stored
// algorithm, salt, and iterations and compares it to the stored hash in
// constant time. The closed-state check is folded in with bitwise AND, not
// a short-circuit branch, so timing does not reveal whether the instance is
// closed versus merely mismatched. The derivation always runs in full.
func (p *HashedPassword) Matches(candidate string) bool {
	derived, err := p.algorithm.Hash(candidate, p.salt, p.iterations)
	if err != nil {
		return false
	}
	defer secmem.Zero(derived)
	return secmem.NonZeroCT(p.salt)&
		secmem.NonZeroCT(p.hash)&
		secmem.EqualCT(p.hash, derived) == 1
}

// Equal reports field-wise equality with other, comparing secret fields in
// constant time. Two closed instances of the same shape are equal.
func (p *HashedPassword) Equal(other *HashedPassword) bool {
	if other == nil {
		return false
	}
	return p.algorithm == other.algorithm &&
		p.iterations == other.iterations &&
		secmem.EqualCT(p.salt, other.salt)&secmem.EqualCT(p.hash, other.hash) == 1
}

// IsRehashRecommended reports whether this hash is weaker than the default
// policy, by algorithm order or iteration count. Callers should re-hash on
// the next successful login when this returns true.
func (p *HashedPassword) IsRehashRecommended() bool {
	return p.RehashRecommendedFor(DefaultPolicy())
}

// RehashRecommendedFor reports whether this hash is weaker than the given
// policy.
func (p *HashedPassword) RehashRecommendedFor(policy Policy) bool {
	return p.algorithm < policy.Algorithm || p.iterations < policy.Iterations
}

// IsClosed reports whether the secret buffers have been wiped (or the value
// is the no-password sentinel).
func (p *HashedPassword) IsClosed() bool {
	return secmem.IsZero(p.salt) && secmem.IsZero(p.hash)
}

// Close wipes the salt and hash in place. Idempotent; after Close the value
// behaves as the sentinel and Matches always returns false.
func (p *HashedPassword) Close() {
	secmem.Zero(p.salt, p.hash)
}
