package rule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainNode is the domain prefix for node structural identity.
// Version suffix enables future algorithm migration.
const DomainNode = "reachrules/node/v1"

// NodeHash computes the content-addressed structural identity of a
// rule tree. Two trees hash equal iff they are structurally identical
// (same shape, same helper names, same literal arguments).
//
// Format: SHA256(domain + 0x00 + canonical). The null byte separator
// prevents domain/data boundary ambiguity.
//
// The hash is used for duplicate-child elimination during
// normalization and as the tree component of memoization keys.
func NodeHash(n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("NodeHash: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainNode))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
