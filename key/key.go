// Package key implements maek's cache key: a JSON-serializable nested
// sequence summarizing every input that can change a task's result. Two
// keys are considered equal for cache-hit purposes when their canonical
// string forms are equal.
package key

import "encoding/json"

// Key is a deterministic, JSON-serializable summary of a task's inputs.
// In practice it is built as a []any of strings and nested []string/[]any
// values (command vectors and hash records) — never a map, so that
// encoding/json's key-order-preserving array encoding is already canonical.
type Key = any

// Canonical returns the canonical string serialization of k, used to
// compare a freshly computed key against the persisted cached key. Two
// equal keys always produce identical strings; json.Marshal's encoding of
// slices is order-preserving, which is sufficient since Key values never
// contain maps.
func Canonical(k Key) (string, error) {
	if k == nil {
		return "null", nil
	}
	b, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Equal reports whether two keys have the same canonical serialization.
// A marshal error on either side is treated as inequality.
func Equal(a, b Key) bool {
	as, aerr := Canonical(a)
	bs, berr := Canonical(b)
	if aerr != nil || berr != nil {
		return false
	}
	return as == bs
}
