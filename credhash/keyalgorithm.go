package credhash

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// KeyAlgorithm identifies a plain message-digest algorithm for hashing
// already-random key material. Declaration order is the strength order,
// weakest first; the registry is append-only at the strong end.
type KeyAlgorithm int

const (
	// KeyMD5 exists only to verify legacy stored hashes.
	KeyMD5 KeyAlgorithm = iota
	// KeySHA1 exists only to verify legacy stored hashes.
	KeySHA1
	// KeySHA224 is SHA-224.
	KeySHA224
	// KeySHA256 is SHA-256, the current recommendation.
	KeySHA256
	// KeySHA384 is SHA-384.
	KeySHA384
	// KeySHA512 is SHA-512.
	KeySHA512
	// KeySHA3_256 is SHA3-256.
	KeySHA3_256
	// KeySHA3_512 is SHA3-512.
	KeySHA3_512
)

// keyAlgorithmParams is the registry backing KeyAlgorithm. The key length
// is the entropy expected of the plaintext key and equals the digest size.
var keyAlgorithmParams = [...]struct {
	name      string
	keyBytes  int
	hashBytes int
	digest    func() hash.Hash
}{
	KeyMD5:      {"md5", 16, 16, md5.New},
	KeySHA1:     {"sha-1", 20, 20, sha1.New},
	KeySHA224:   {"sha-224", 28, 28, sha256.New224},
	KeySHA256:   {"sha-256", 32, 32, sha256.New},
	KeySHA384:   {"sha-384", 48, 48, sha512.New384},
	KeySHA512:   {"sha-512", 64, 64, sha512.New},
	KeySHA3_256: {"sha3-256", 32, 32, sha3.New256},
	KeySHA3_512: {"sha3-512", 64, 64, sha3.New512},
}

// RecommendedKeyAlgorithm is the algorithm new key hashes should use.
const RecommendedKeyAlgorithm = KeySHA256

// Valid reports whether a names a registered key algorithm.
func (a KeyAlgorithm) Valid() bool {
	return a >= 0 && int(a) < len(keyAlgorithmParams)
}

// String returns the canonical persisted name.
func (a KeyAlgorithm) String() string {
	if !a.Valid() {
		return fmt.Sprintf("KeyAlgorithm(%d)", int(a))
	}
	return keyAlgorithmParams[a].name
}

// KeyBytes returns the required plaintext key length in bytes.
func (a KeyAlgorithm) KeyBytes() int { return keyAlgorithmParams[a].keyBytes }

// HashBytes returns the fixed digest length in bytes.
func (a KeyAlgorithm) HashBytes() int { return keyAlgorithmParams[a].hashBytes }

// LookupKeyAlgorithm resolves a canonical name case-insensitively,
// searching from strongest to weakest.
func LookupKeyAlgorithm(name string) (KeyAlgorithm, error) {
	for a := KeyAlgorithm(len(keyAlgorithmParams) - 1); a >= 0; a-- {
		if strings.EqualFold(keyAlgorithmParams[a].name, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// GenerateKey produces the plaintext secret: KeyBytes bytes from the
// process-wide cryptographically secure random source. The caller owns the
// returned buffer and should wipe it once hashed.
func GenerateKey(a KeyAlgorithm) ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(a))
	}
	key := make([]byte, a.KeyBytes())
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("credhash: generate key: %w", err)
	}
	return key, nil
}

// Hash runs a single digest pass over key. The key must be exactly
// KeyBytes long; key hashing assumes full-entropy input and applies no
// stretching.
func (a KeyAlgorithm) Hash(key []byte) ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(a))
	}
	if len(key) != a.KeyBytes() {
		return nil, fmt.Errorf("%w: key is %d bytes, %s requires %d",
			ErrInvalidLength, len(key), a, a.KeyBytes())
	}
	d := keyAlgorithmParams[a].digest()
	d.Write(key)
	return d.Sum(nil), nil
}
