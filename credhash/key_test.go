package credhash

import (
	"errors"
	"testing"

	"github.com/credforge/credkit/secmem"
)

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	for a := KeyMD5; a <= KeySHA3_512; a++ {
		key, err := GenerateKey(a)
		if err != nil {
			t.Fatalf("%s: generate: %v", a, err)
		}
		hk, err := HashKey(a, key)
		if err != nil {
			t.Fatalf("%s: hash: %v", a, err)
		}

		encoded := hk.String()
		parsed, err := ParseKey(encoded)
		if err != nil {
			t.Fatalf("%s: parse %q: %v", a, encoded, err)
		}
		if !hk.Equal(parsed) {
			t.Fatalf("%s: round trip mismatch for %q", a, encoded)
		}
		if !parsed.Matches(key) {
			t.Fatalf("%s: parsed hash rejected the original key", a)
		}
	}
}

func TestKeyEqual(t *testing.T) {
	t.Parallel()

	key, err := GenerateKey(KeySHA256)
	if err != nil {
		t.Fatal(err)
	}
	a, err := HashKey(KeySHA256, key)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashKey(KeySHA256, key)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatal("hashes of the same key are not equal")
	}
	if !a.Equal(a) {
		t.Fatal("hash not equal to itself")
	}

	otherKey, err := GenerateKey(KeySHA256)
	if err != nil {
		t.Fatal(err)
	}
	c, err := HashKey(KeySHA256, otherKey)
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(c) {
		t.Fatal("hashes of different keys are equal")
	}
	if a.Equal(nil) {
		t.Fatal("hash equal to nil")
	}

	// Same key material under a different algorithm never compares equal.
	d, err := HashKey(KeySHA3_256, key)
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(d) {
		t.Fatal("hashes under different algorithms are equal")
	}
}

func TestKeyMatches(t *testing.T) {
	t.Parallel()

	key, err := GenerateKey(KeySHA256)
	if err != nil {
		t.Fatal(err)
	}
	hk, err := HashKey(KeySHA256, key)
	if err != nil {
		t.Fatal(err)
	}
	if !hk.Matches(key) {
		t.Fatal("correct key did not match")
	}

	wrong := append([]byte(nil), key...)
	wrong[0] ^= 0xFF
	if hk.Matches(wrong) {
		t.Fatal("wrong key matched")
	}
	if hk.Matches(key[:10]) {
		t.Fatal("truncated key matched")
	}
}

func TestNewHashedKeyMoveAndWipe(t *testing.T) {
	t.Parallel()

	key, err := GenerateKey(KeySHA256)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := KeySHA256.Hash(key)
	if err != nil {
		t.Fatal(err)
	}

	hashArg := append([]byte(nil), hash...)
	hk, err := NewHashedKey(KeySHA256, hashArg)
	if err != nil {
		t.Fatal(err)
	}
	if !secmem.IsZero(hashArg) {
		t.Fatal("constructor left caller buffer intact")
	}
	if !hk.Matches(key) {
		t.Fatal("constructed hash does not match")
	}

	short := []byte{1, 2, 3}
	if _, err := NewHashedKey(KeySHA256, short); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if !secmem.IsZero(short) {
		t.Fatal("error path left buffer intact")
	}

	zero := make([]byte, KeySHA256.HashBytes())
	if _, err := NewHashedKey(KeySHA256, zero); !errors.Is(err, ErrReservedValue) {
		t.Fatalf("expected ErrReservedValue, got %v", err)
	}
}

func TestParseKeyErrors(t *testing.T) {
	t.Parallel()

	validHash := b64.EncodeToString(append(make([]byte, KeySHA256.HashBytes()-1), 1))
	zeroHash := b64.EncodeToString(make([]byte, KeySHA256.HashBytes()))

	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{"missing separator", "sha-256", ErrInvalidFormat},
		{"too many fields", "sha-256.a.b", ErrInvalidFormat},
		{"unknown algorithm", "blake2b." + validHash, ErrUnsupportedAlgorithm},
		{"bad base64", "sha-256.!!!", ErrInvalidFormat},
		{"short hash", "sha-256." + b64.EncodeToString([]byte{1}), ErrInvalidLength},
		{"all-zero hash", "sha-256." + zeroHash, ErrReservedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseKey(tt.encoded); !errors.Is(err, tt.want) {
				t.Fatalf("ParseKey(%q) err = %v, want %v", tt.encoded, err, tt.want)
			}
		})
	}

	hk, err := ParseKey("")
	if hk != nil || err != nil {
		t.Fatalf("ParseKey(\"\") = %v, %v; want nil, nil", hk, err)
	}
}

func TestKeySentinelAndClose(t *testing.T) {
	t.Parallel()

	nk := NoKey()
	if !nk.IsClosed() || nk.String() != Sentinel {
		t.Fatal("NoKey is not the closed sentinel")
	}

	parsed, err := ParseKey(Sentinel)
	if err != nil || !parsed.IsClosed() {
		t.Fatalf("parse sentinel: %v, closed=%v", err, parsed.IsClosed())
	}

	key, err := GenerateKey(KeySHA256)
	if err != nil {
		t.Fatal(err)
	}
	hk, err := HashKey(KeySHA256, key)
	if err != nil {
		t.Fatal(err)
	}
	other, err := HashKey(KeySHA256, key)
	if err != nil {
		t.Fatal(err)
	}

	hk.Close()
	if !hk.IsClosed() {
		t.Fatal("not closed after Close")
	}
	if hk.Matches(key) {
		t.Fatal("closed hash matched the original key")
	}
	if hk.Equal(other) || other.Equal(hk) {
		t.Fatal("closed hash compared equal")
	}
	if hk.String() != Sentinel {
		t.Fatalf("closed hash encodes to %q", hk.String())
	}
	hk.Close() // idempotent
	if !hk.IsClosed() {
		t.Fatal("second Close changed state")
	}
}
