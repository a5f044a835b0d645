package identifier_test

import (
	"fmt"

	"github.com/credforge/credkit/identifier"
)

func ExampleParse() {
	id := identifier.FromWords(0, 57)
	encoded := id.String()

	parsed, err := identifier.Parse(encoded)
	if err != nil {
		panic(err)
	}

	fmt.Println("encoded:", encoded)
	fmt.Println("length:", len(encoded))
	fmt.Println("round trip:", parsed == id)

	// Output:
	// encoded: 2222222222222222222232
	// length: 22
	// round trip: true
}

func ExampleSmallIdentifier_String() {
	fmt.Println(identifier.SmallIdentifier(0))
	fmt.Println(identifier.SmallIdentifier(56))
	fmt.Println(identifier.SmallIdentifier(57))

	// Output:
	// 22222222222
	// 2222222222z
	// 22222222232
}
