// Package credhash implements salted, iterated, algorithm-versioned
// credential hashing with constant-time verification and explicit secret
// zeroization.
//
// Two value types are provided. [HashedPassword] stretches a human-chosen
// password through PBKDF2 with a per-credential random salt and a tracked
// iteration count. [HashedKey] digests caller-supplied high-entropy key
// material in a single pass; random keys need no stretching.
//
// Both types persist to a compact textual form safe for URLs, cookies, and
// filenames:
//
//	<algorithm>.<base64url(salt)>.<iterations>.<base64url(hash)>   password
//	<algorithm>.<base64url(hash)>                                  key
//
// The single-character string "." is the reserved sentinel meaning "no
// credential set". An instance whose buffers have been wiped by Close
// serializes to the sentinel and matches nothing.
//
// # Lifecycle
//
//	hp, _ := credhash.HashPassword("correct horse battery staple")
//	stored := hp.String()                // persist
//	...
//	hp, _ = credhash.ParsePassword(stored)
//	ok := hp.Matches(candidate)          // constant-time verify
//	if ok && hp.IsRehashRecommended() {
//	    hp, _ = credhash.HashPassword(candidate) // upgrade on login
//	}
//	hp.Close()                           // wipe secret material
//
// Algorithm registries are append-only: new entries may be added at the
// strong end, existing names and their relative order are frozen because
// persisted strings and rehash decisions depend on them.
package credhash
