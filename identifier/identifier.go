// Package identifier generates cryptographically random fixed-width
// identifiers and encodes them in a compact base-57 textual form.
//
// Identifier is 128 bits wide and encodes to exactly 22 characters;
// SmallIdentifier is 64 bits and encodes to 11. The alphabet excludes
// visually ambiguous characters and contains no separators, so encoded
// identifiers are safe in URLs, cookies, and filenames. Identifiers are
// plain value types: no secret lifecycle, safe to copy and compare.
package identifier

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EncodedLen is the exact length of an encoded Identifier.
const EncodedLen = 22

// SmallEncodedLen is the exact length of an encoded SmallIdentifier.
const SmallEncodedLen = 11

// ErrInvalidFormat indicates an encoded identifier of the wrong length,
// containing a byte outside the base-57 alphabet, or encoding a value too
// wide for the type.
var ErrInvalidFormat = errors.New("identifier: invalid encoded form")

// Identifier is an immutable 128-bit identifier held as two unsigned
// 64-bit halves.
type Identifier struct {
	hi, lo uint64
}

// New draws 16 bytes from the process-wide cryptographically secure random
// source.
func New() (Identifier, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Identifier{}, fmt.Errorf("identifier: %w", err)
	}
	return Identifier{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}, nil
}

// FromWords builds an Identifier from its high and low unsigned halves.
func FromWords(hi, lo uint64) Identifier {
	return Identifier{hi: hi, lo: lo}
}

// FromUUID reinterprets the 16 bytes of a UUID as an Identifier, high word
// first. Useful for interop with UUID-keyed systems.
func FromUUID(u uuid.UUID) Identifier {
	return Identifier{
		hi: binary.BigEndian.Uint64(u[:8]),
		lo: binary.BigEndian.Uint64(u[8:]),
	}
}

// Parse decodes the canonical 22-character form.
func Parse(s string) (Identifier, error) {
	if len(s) != EncodedLen {
		return Identifier{}, fmt.Errorf("%w: length %d, want %d", ErrInvalidFormat, len(s), EncodedLen)
	}
	hi, lo, ok := decode128(s)
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return Identifier{hi: hi, lo: lo}, nil
}

// Hi returns the high unsigned 64-bit half.
func (id Identifier) Hi() uint64 { return id.hi }

// Lo returns the low unsigned 64-bit half.
func (id Identifier) Lo() uint64 { return id.lo }

// UUID returns the identifier's 16 bytes as a UUID, high word first.
func (id Identifier) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], id.hi)
	binary.BigEndian.PutUint64(u[8:], id.lo)
	return u
}

// String encodes the identifier to its fixed-width 22-character form.
func (id Identifier) String() string {
	var buf [EncodedLen]byte
	encode128(id.hi, id.lo, buf[:])
	return string(buf[:])
}

// Compare orders identifiers by unsigned value, high word first. It
// returns -1, 0, or +1.
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.hi < other.hi:
		return -1
	case id.hi > other.hi:
		return 1
	case id.lo < other.lo:
		return -1
	case id.lo > other.lo:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	var buf [EncodedLen]byte
	encode128(id.hi, id.lo, buf[:])
	return buf[:], nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SmallIdentifier is an immutable 64-bit identifier.
type SmallIdentifier uint64

// NewSmall draws 8 bytes from the process-wide cryptographically secure
// random source.
func NewSmall() (SmallIdentifier, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("identifier: %w", err)
	}
	return SmallIdentifier(binary.BigEndian.Uint64(b[:])), nil
}

// ParseSmall decodes the canonical 11-character form.
func ParseSmall(s string) (SmallIdentifier, error) {
	if len(s) != SmallEncodedLen {
		return 0, fmt.Errorf("%w: length %d, want %d", ErrInvalidFormat, len(s), SmallEncodedLen)
	}
	v, ok := decode64(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return SmallIdentifier(v), nil
}

// String encodes the identifier to its fixed-width 11-character form.
func (id SmallIdentifier) String() string {
	var buf [SmallEncodedLen]byte
	encode64(uint64(id), buf[:])
	return string(buf[:])
}

// Compare orders identifiers by unsigned value.
func (id SmallIdentifier) Compare(other SmallIdentifier) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id SmallIdentifier) MarshalText() ([]byte, error) {
	var buf [SmallEncodedLen]byte
	encode64(uint64(id), buf[:])
	return buf[:], nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *SmallIdentifier) UnmarshalText(text []byte) error {
	parsed, err := ParseSmall(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
