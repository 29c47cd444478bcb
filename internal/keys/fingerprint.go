package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/gencache/predicate"
	"github.com/unkn0wn-root/gencache/query"
)

// separator sits between components. No canonical form contains a NUL byte,
// so ("a", "b\x00c") and ("a\x00b", "c") cannot hash the same input.
const separator = "\x00"

// Fingerprint hashes the canonical forms of a query's criteria, options and
// selector. It depends only on content, never on pointers.
func Fingerprint(criteria predicate.Predicate, opts *query.Options, sel query.Selector) (string, error) {
	crit, err := predicate.Canonical(criteria)
	if err != nil {
		return "", fmt.Errorf("criteria: %w", err)
	}
	return Digest(crit, opts.Canonical(), sel.Canonical()), nil
}

// Digest is the sha256 hex of parts joined by the separator.
func Digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, separator)))
	return hex.EncodeToString(sum[:])
}
