package fypapp

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// HandleSuffix is appended to every handle derived from an email-like
// identifier.
const HandleSuffix = ".test"

var handleReplacer = strings.NewReplacer("@", "-", ".", "-", "_", "-")

// DeriveHandle turns an email-like identifier into a namespace handle:
// reserved characters become "-" and the fixed suffix is appended.
// Identifiers without an "@" are assumed to already be handles and
// pass through unchanged, which makes the transform idempotent.
func DeriveHandle(identifier string) string {
	if !strings.Contains(identifier, "@") {
		return identifier
	}
	return handleReplacer.Replace(strings.ToLower(identifier)) + HandleSuffix
}

// SortPair returns the two identities in lexicographic order.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// MatchKey computes the deterministic record key for a match between
// two identities. The key is a pure function of the unordered pair:
// both parties compute the same value regardless of argument order.
// The sorted pair is hashed because identities contain characters
// (":") that are not legal in a record key.
func MatchKey(a, b string) string {
	lo, hi := SortPair(a, b)
	sum := xxh3.HashString128(lo + "|" + hi)
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
}
