package dataprep

import (
	"fmt"
	"strings"
)

// AnonymizedSuffix marks an anonymized column: "email" becomes "email_anon".
const AnonymizedSuffix = "_anon"

// AnonymizedName returns the name an anonymized column is stored under.
func AnonymizedName(plain string) string {
	return plain + AnonymizedSuffix
}

// HasAnonymizedMarker reports whether name ends in AnonymizedSuffix after a
// non-empty plain name. The marker elsewhere in the name does not count:
// "user_anon_id" is a plain name.
func HasAnonymizedMarker(name string) bool {
	return len(name) > len(AnonymizedSuffix) && strings.HasSuffix(name, AnonymizedSuffix)
}

// PlainName strips AnonymizedSuffix from an anonymized column name.
func PlainName(name string) (string, error) {
	if !HasAnonymizedMarker(name) {
		return "", fmt.Errorf("%w: %q", ErrNotAnonymizedName, name)
	}
	return strings.TrimSuffix(name, AnonymizedSuffix), nil
}
