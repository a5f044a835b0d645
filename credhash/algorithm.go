package credhash

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/credforge/credkit/secmem"
)

// Algorithm identifies a password key-derivation algorithm. Declaration
// order is the strength order, weakest first: it drives rehash
// recommendations and must never be reshuffled.
type Algorithm int

const (
	// PBKDF2SHA1 is PBKDF2 with HMAC-SHA1. Kept for verifying old hashes;
	// do not use for new credentials.
	PBKDF2SHA1 Algorithm = iota
	// PBKDF2SHA224 is PBKDF2 with HMAC-SHA224.
	PBKDF2SHA224
	// PBKDF2SHA256 is PBKDF2 with HMAC-SHA256.
	PBKDF2SHA256
	// PBKDF2SHA384 is PBKDF2 with HMAC-SHA384.
	PBKDF2SHA384
	// PBKDF2SHA512 is PBKDF2 with HMAC-SHA512, the current recommendation.
	PBKDF2SHA512
)

// algorithmParams is the registry backing Algorithm. Canonical names are
// persisted in encoded credentials: they are stable, URL-safe, and never
// contain the field separator.
var algorithmParams = [...]struct {
	name      string
	saltBytes int
	hashBytes int
	digest    func() hash.Hash
}{
	PBKDF2SHA1:   {"pbkdf2-sha1", 16, 20, sha1.New},
	PBKDF2SHA224: {"pbkdf2-sha224", 16, 28, sha256.New224},
	PBKDF2SHA256: {"pbkdf2-sha256", 16, 32, sha256.New},
	PBKDF2SHA384: {"pbkdf2-sha384", 32, 48, sha512.New384},
	PBKDF2SHA512: {"pbkdf2-sha512", 32, 64, sha512.New},
}

// RecommendedAlgorithm is the algorithm new password hashes should use.
// It may move to a stronger entry between releases.
const RecommendedAlgorithm = PBKDF2SHA512

// RecommendedIterations is the iteration count new password hashes should
// use. It may grow between releases.
const RecommendedIterations = 25000

// Valid reports whether a names a registered algorithm.
func (a Algorithm) Valid() bool {
	return a >= 0 && int(a) < len(algorithmParams)
}

// String returns the canonical persisted name.
func (a Algorithm) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmParams[a].name
}

// SaltBytes returns the fixed salt length in bytes.
func (a Algorithm) SaltBytes() int { return algorithmParams[a].saltBytes }

// HashBytes returns the fixed output hash length in bytes.
func (a Algorithm) HashBytes() int { return algorithmParams[a].hashBytes }

// LookupAlgorithm resolves a canonical name case-insensitively, searching
// from strongest to weakest so a stronger entry wins any case-insensitive
// collision.
func LookupAlgorithm(name string) (Algorithm, error) {
	for a := Algorithm(len(algorithmParams) - 1); a >= 0; a-- {
		if strings.EqualFold(algorithmParams[a].name, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// GenerateSalt fills a fresh salt of the algorithm's fixed length from the
// process-wide cryptographically secure random source.
func GenerateSalt(a Algorithm) ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(a))
	}
	salt := make([]byte, a.SaltBytes())
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("credhash: generate salt: %w", err)
	}
	return salt, nil
}

// Hash derives the password hash for the given salt and iteration count,
// producing exactly HashBytes bytes. The transient byte copy of the
// password is wiped before returning.
func (a Algorithm) Hash(password string, salt []byte, iterations int) ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(a))
	}
	if len(salt) != a.SaltBytes() {
		return nil, fmt.Errorf("%w: salt is %d bytes, %s requires %d",
			ErrInvalidLength, len(salt), a, a.SaltBytes())
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}
	pw := []byte(password)
	defer secmem.Zero(pw)
	return pbkdf2.Key(pw, salt, iterations, a.HashBytes(), algorithmParams[a].digest), nil
}
