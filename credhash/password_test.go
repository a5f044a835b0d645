package credhash

import (
	"errors"
	"strings"
	"testing"

	"github.com/credforge/credkit/secmem"
)

// fastPolicy keeps test derivations cheap.
var fastPolicy = Policy{Algorithm: PBKDF2SHA256, Iterations: 100}

func TestHashPasswordMatches(t *testing.T) {
	t.Parallel()

	passwords := []string{
		"correct horse battery staple",
		"hunter2",
		"p@ssw0rd with spaces and $ymbols!",
		"",
	}
	for _, pw := range passwords {
		t.Run(pw, func(t *testing.T) {
			t.Parallel()
			hp, err := HashPasswordWith(fastPolicy, pw)
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if !hp.Matches(pw) {
				t.Fatal("correct password did not match")
			}
			if hp.Matches(pw + "x") {
				t.Fatal("wrong password matched")
			}
		})
	}
}

func TestHashPasswordFreshSalt(t *testing.T) {
	t.Parallel()

	a, err := HashPasswordWith(fastPolicy, "same password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPasswordWith(fastPolicy, "same password")
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(b) {
		t.Fatal("two hashes of the same password share a salt")
	}
	if a.String() == b.String() {
		t.Fatal("two hashes of the same password encode identically")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	for a := PBKDF2SHA1; a <= PBKDF2SHA512; a++ {
		hp, err := HashPasswordWith(Policy{Algorithm: a, Iterations: 37}, "round trip")
		if err != nil {
			t.Fatalf("%s: hash: %v", a, err)
		}
		encoded := hp.String()
		parsed, err := ParsePassword(encoded)
		if err != nil {
			t.Fatalf("%s: parse %q: %v", a, encoded, err)
		}
		if !hp.Equal(parsed) {
			t.Fatalf("%s: round trip mismatch for %q", a, encoded)
		}
		if parsed.Algorithm() != a || parsed.Iterations() != 37 {
			t.Fatalf("%s: parsed metadata %v/%d", a, parsed.Algorithm(), parsed.Iterations())
		}
		if !parsed.Matches("round trip") {
			t.Fatalf("%s: parsed hash does not match original password", a)
		}
	}
}

func TestNewHashedPasswordMoveAndWipe(t *testing.T) {
	t.Parallel()

	salt, err := GenerateSalt(PBKDF2SHA256)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := PBKDF2SHA256.Hash("pw", salt, 50)
	if err != nil {
		t.Fatal(err)
	}

	saltArg := append([]byte(nil), salt...)
	hashArg := append([]byte(nil), hash...)
	hp, err := NewHashedPassword(PBKDF2SHA256, saltArg, 50, hashArg)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if !secmem.IsZero(saltArg) || !secmem.IsZero(hashArg) {
		t.Fatal("constructor left caller buffers intact")
	}
	if !hp.Matches("pw") {
		t.Fatal("constructed hash does not match")
	}
}

func TestNewHashedPasswordWipesOnError(t *testing.T) {
	t.Parallel()

	salt := []byte{1, 2, 3} // wrong length
	hash := make([]byte, PBKDF2SHA256.HashBytes())
	hash[0] = 7

	_, err := NewHashedPassword(PBKDF2SHA256, salt, 50, hash)
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if !secmem.IsZero(salt) || !secmem.IsZero(hash) {
		t.Fatal("error path left secret buffers intact")
	}

	hash2 := make([]byte, PBKDF2SHA256.HashBytes())
	hash2[0] = 7
	salt2 := make([]byte, PBKDF2SHA256.SaltBytes())
	salt2[0] = 9
	if _, err := NewHashedPassword(PBKDF2SHA256, salt2, 0, hash2); !errors.Is(err, ErrInvalidIterations) {
		t.Fatalf("expected ErrInvalidIterations, got %v", err)
	}
	if !secmem.IsZero(salt2) || !secmem.IsZero(hash2) {
		t.Fatal("iteration error path left secret buffers intact")
	}
}

func TestNewHashedPasswordRejectsReservedValue(t *testing.T) {
	t.Parallel()

	zeroSalt := make([]byte, PBKDF2SHA256.SaltBytes())
	hash := make([]byte, PBKDF2SHA256.HashBytes())
	hash[3] = 1
	if _, err := NewHashedPassword(PBKDF2SHA256, zeroSalt, 50, hash); !errors.Is(err, ErrReservedValue) {
		t.Fatalf("all-zero salt: expected ErrReservedValue, got %v", err)
	}

	salt := make([]byte, PBKDF2SHA256.SaltBytes())
	salt[3] = 1
	zeroHash := make([]byte, PBKDF2SHA256.HashBytes())
	if _, err := NewHashedPassword(PBKDF2SHA256, salt, 50, zeroHash); !errors.Is(err, ErrReservedValue) {
		t.Fatalf("all-zero hash: expected ErrReservedValue, got %v", err)
	}
}

func TestParsePasswordErrors(t *testing.T) {
	t.Parallel()

	validSalt := b64.EncodeToString(append(make([]byte, PBKDF2SHA256.SaltBytes()-1), 1))
	validHash := b64.EncodeToString(append(make([]byte, PBKDF2SHA256.HashBytes()-1), 1))
	zeroSalt := b64.EncodeToString(make([]byte, PBKDF2SHA256.SaltBytes()))

	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{"missing fields", "pbkdf2-sha256." + validSalt, ErrInvalidFormat},
		{"too many fields", "pbkdf2-sha256.a.b.c.d", ErrInvalidFormat},
		{"unknown algorithm", "scrypt." + validSalt + ".100." + validHash, ErrUnsupportedAlgorithm},
		{"bad base64 salt", "pbkdf2-sha256.!!!.100." + validHash, ErrInvalidFormat},
		{"short salt", "pbkdf2-sha256." + b64.EncodeToString([]byte{1, 2}) + ".100." + validHash, ErrInvalidLength},
		{"non-numeric iterations", "pbkdf2-sha256." + validSalt + ".ten." + validHash, ErrInvalidIterations},
		{"zero iterations", "pbkdf2-sha256." + validSalt + ".0." + validHash, ErrInvalidIterations},
		{"negative iterations", "pbkdf2-sha256." + validSalt + ".-5." + validHash, ErrInvalidIterations},
		{"bad base64 hash", "pbkdf2-sha256." + validSalt + ".100.!!!", ErrInvalidFormat},
		{"all-zero salt", "pbkdf2-sha256." + zeroSalt + ".100." + validHash, ErrReservedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParsePassword(tt.encoded); !errors.Is(err, tt.want) {
				t.Fatalf("ParsePassword(%q) err = %v, want %v", tt.encoded, err, tt.want)
			}
		})
	}
}

func TestParsePasswordAbsent(t *testing.T) {
	t.Parallel()

	hp, err := ParsePassword("")
	if hp != nil || err != nil {
		t.Fatalf("ParsePassword(\"\") = %v, %v; want nil, nil", hp, err)
	}
}

func TestPasswordSentinel(t *testing.T) {
	t.Parallel()

	np := NoPassword()
	if !np.IsClosed() {
		t.Fatal("NoPassword is not closed")
	}
	if got := np.String(); got != Sentinel {
		t.Fatalf("NoPassword encodes to %q, want %q", got, Sentinel)
	}
	if np.Matches("") || np.Matches("anything") {
		t.Fatal("sentinel matched a password")
	}

	parsed, err := ParsePassword(Sentinel)
	if err != nil {
		t.Fatalf("parse sentinel: %v", err)
	}
	if !parsed.IsClosed() {
		t.Fatal("parsed sentinel is not closed")
	}
}

func TestPasswordClose(t *testing.T) {
	t.Parallel()

	const pw = "close me"
	hp, err := HashPasswordWith(fastPolicy, pw)
	if err != nil {
		t.Fatal(err)
	}
	if hp.IsClosed() {
		t.Fatal("fresh hash reports closed")
	}

	hp.Close()
	if !hp.IsClosed() {
		t.Fatal("hash not closed after Close")
	}
	if hp.Matches(pw) {
		t.Fatal("closed hash matched the original password")
	}
	if got := hp.String(); got != Sentinel {
		t.Fatalf("closed hash encodes to %q, want %q", got, Sentinel)
	}

	hp.Close() // idempotent
	if !hp.IsClosed() || hp.String() != Sentinel {
		t.Fatal("second Close changed state")
	}
}

func TestIsRehashRecommended(t *testing.T) {
	t.Parallel()

	weak, err := HashPasswordWith(Policy{Algorithm: PBKDF2SHA1, Iterations: 1}, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !weak.IsRehashRecommended() {
		t.Fatal("weakest algorithm at 1 iteration not flagged for rehash")
	}

	current, err := HashPasswordWith(DefaultPolicy(), "pw")
	if err != nil {
		t.Fatal(err)
	}
	if current.IsRehashRecommended() {
		t.Fatal("hash at current recommendation flagged for rehash")
	}

	fewIters, err := HashPasswordWith(Policy{Algorithm: RecommendedAlgorithm, Iterations: RecommendedIterations - 1}, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !fewIters.IsRehashRecommended() {
		t.Fatal("below-recommended iteration count not flagged")
	}

	strongPolicy := Policy{Algorithm: PBKDF2SHA512, Iterations: RecommendedIterations * 2}
	if !current.RehashRecommendedFor(strongPolicy) {
		t.Fatal("stricter policy not flagged")
	}
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	const password = "correct horse battery staple"
	const iterations = 25000

	salt, err := GenerateSalt(RecommendedAlgorithm)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := RecommendedAlgorithm.Hash(password, salt, iterations)
	if err != nil {
		t.Fatal(err)
	}
	hp, err := NewHashedPassword(RecommendedAlgorithm, salt, iterations, hash)
	if err != nil {
		t.Fatal(err)
	}

	encoded := hp.String()
	if strings.Count(encoded, Separator) != 3 {
		t.Fatalf("encoded form %q does not have 4 fields", encoded)
	}

	fresh, err := ParsePassword(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh.Matches(password) {
		t.Fatal("parsed hash rejected the correct password")
	}
	if fresh.Matches("Correct horse battery staple") {
		t.Fatal("parsed hash accepted a case-flipped password")
	}
	if fresh.IsRehashRecommended() {
		t.Fatal("freshly recommended hash flagged for rehash")
	}
}
