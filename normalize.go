package dataprep

import "strings"

// Normalizer transforms inverted-index keys into a canonical form, so that
// for example "Red" and "red " land under the same key.
type Normalizer func(string) string

// NormalizeNone is an identity normalizer that returns the input unchanged.
// It is the default: keys match exactly.
var NormalizeNone Normalizer = func(s string) string {
	return s
}

// NormalizeTrim normalizes by trimming leading and trailing whitespace only.
// Preserves case.
var NormalizeTrim Normalizer = func(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeLower normalizes to lowercase only (no trim).
var NormalizeLower Normalizer = func(s string) string {
	return strings.ToLower(s)
}

// NormalizeCaseless applies lowercase + trim whitespace.
//
// Example: " Alice@Example.COM " -> "alice@example.com"
var NormalizeCaseless Normalizer = func(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
