package identifier

import (
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestIdentifierRoundTrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		id, err := New()
		if err != nil {
			t.Fatal(err)
		}
		s := id.String()
		if len(s) != EncodedLen {
			t.Fatalf("encoded length %d, want %d (%q)", len(s), EncodedLen, s)
		}
		parsed, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if parsed != id {
			t.Fatalf("round trip %q: got %v, want %v", s, parsed, id)
		}
	}
}

func TestSmallIdentifierRoundTrip(t *testing.T) {
	t.Parallel()

	values := []SmallIdentifier{0, 1, 56, 57, math.MaxUint64, math.MaxUint64 - 1}
	for i := 0; i < 200; i++ {
		id, err := NewSmall()
		if err != nil {
			t.Fatal(err)
		}
		values = append(values, id)
	}
	for _, id := range values {
		s := id.String()
		if len(s) != SmallEncodedLen {
			t.Fatalf("encoded length %d, want %d (%q)", len(s), SmallEncodedLen, s)
		}
		parsed, err := ParseSmall(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if parsed != id {
			t.Fatalf("round trip %q: got %v, want %v", s, parsed, id)
		}
	}
}

func TestIdentifierBoundaryValues(t *testing.T) {
	t.Parallel()

	tests := []Identifier{
		FromWords(0, 0),
		FromWords(0, 1),
		FromWords(0, math.MaxUint64),
		FromWords(1, 0),
		FromWords(math.MaxUint64, math.MaxUint64),
	}
	for _, id := range tests {
		parsed, err := Parse(id.String())
		if err != nil {
			t.Fatalf("parse %v: %v", id, err)
		}
		if parsed != id {
			t.Fatalf("round trip %v: got %v", id, parsed)
		}
	}

	if FromWords(0, 0).String() != strings.Repeat(alphabet[:1], EncodedLen) {
		t.Fatalf("zero identifier encodes to %q", FromWords(0, 0).String())
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	valid := FromWords(0, 42).String()

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too short", valid[:EncodedLen-1]},
		{"too long", valid + "2"},
		{"ambiguous zero", strings.Repeat("0", EncodedLen)},
		{"ambiguous l", valid[:EncodedLen-1] + "l"},
		{"separator char", valid[:EncodedLen-1] + "."},
		{"overflow", strings.Repeat("z", EncodedLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(tt.in); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("Parse(%q) err = %v, want ErrInvalidFormat", tt.in, err)
			}
		})
	}

	if _, err := ParseSmall(strings.Repeat("z", SmallEncodedLen)); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("small overflow err = %v", err)
	}
	if _, err := ParseSmall("short"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatal("short small identifier accepted")
	}
}

func TestOrderingMatchesEncoding(t *testing.T) {
	t.Parallel()

	ids := make([]Identifier, 0, 500)
	for i := 0; i < 500; i++ {
		id, err := New()
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	byValue := append([]Identifier(nil), ids...)
	sort.Slice(byValue, func(i, j int) bool { return byValue[i].Compare(byValue[j]) < 0 })

	byString := append([]Identifier(nil), ids...)
	sort.Slice(byString, func(i, j int) bool { return byString[i].String() < byString[j].String() })

	for i := range byValue {
		if byValue[i] != byString[i] {
			t.Fatalf("ordering diverges at %d: %v vs %v", i, byValue[i], byString[i])
		}
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a := FromWords(1, 0)
	b := FromWords(0, math.MaxUint64)
	if a.Compare(b) != 1 || b.Compare(a) != -1 {
		t.Fatal("high word does not dominate ordering")
	}
	if a.Compare(a) != 0 {
		t.Fatal("identifier not equal to itself")
	}
	if SmallIdentifier(5).Compare(SmallIdentifier(9)) != -1 {
		t.Fatal("small identifier ordering broken")
	}
}

func TestUUIDInterop(t *testing.T) {
	t.Parallel()

	u := uuid.New()
	id := FromUUID(u)
	if id.UUID() != u {
		t.Fatalf("uuid round trip: %v != %v", id.UUID(), u)
	}

	id2, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if FromUUID(id2.UUID()) != id2 {
		t.Fatal("identifier -> uuid -> identifier changed value")
	}
}

func TestTextMarshaling(t *testing.T) {
	t.Parallel()

	id, err := New()
	if err != nil {
		t.Fatal(err)
	}
	text, err := id.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Identifier
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Fatalf("text round trip: %v != %v", back, id)
	}

	var small SmallIdentifier
	if err := small.UnmarshalText([]byte(SmallIdentifier(12345).String())); err != nil {
		t.Fatal(err)
	}
	if small != 12345 {
		t.Fatalf("small text round trip: %v", small)
	}
}
