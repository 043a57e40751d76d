package dataprep

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Registry tracks which columns are anonymized and holds their keys, indexed
// by plain column name. It is the only owner of key material: keys are copied
// in on Register and out on KeyFor, and zeroed on Release.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	keys map[string][]byte
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[string][]byte)}
}

// IsAnonymized reports whether plain is registered.
func (r *Registry) IsAnonymized(plain string) bool {
	_, ok := r.keys[plain]
	return ok
}

// Register stores key for plain and marks it anonymized.
func (r *Registry) Register(plain string, key []byte) error {
	if r.IsAnonymized(plain) {
		return fmt.Errorf("%w: %q", ErrAlreadyAnonymized, plain)
	}
	if len(key) != KeySize {
		return ErrInvalidKeySize
	}
	r.keys[plain] = copyKey(key)
	return nil
}

// KeyFor returns a copy of the key registered for plain.
func (r *Registry) KeyFor(plain string) ([]byte, error) {
	key, ok := r.keys[plain]
	if !ok {
		return nil, fmt.Errorf("%w: no key for %q", ErrUnknownColumn, plain)
	}
	return copyKey(key), nil
}

// Replace swaps the key of a registered column, zeroing the old one.
func (r *Registry) Replace(plain string, key []byte) error {
	old, ok := r.keys[plain]
	if !ok {
		return fmt.Errorf("%w: no key for %q", ErrUnknownColumn, plain)
	}
	if len(key) != KeySize {
		return ErrInvalidKeySize
	}
	r.keys[plain] = copyKey(key)
	zero(old)
	return nil
}

// Release zeroes and forgets the key for plain, clearing its anonymized mark.
func (r *Registry) Release(plain string) error {
	key, ok := r.keys[plain]
	if !ok {
		return fmt.Errorf("%w: no key for %q", ErrUnknownColumn, plain)
	}
	zero(key)
	delete(r.keys, plain)
	return nil
}

// AllKeys returns a deep copy of every registered key, for audit and backup.
func (r *Registry) AllKeys() map[string][]byte {
	return lo.MapValues(r.keys, func(key []byte, _ string) []byte {
		return copyKey(key)
	})
}

// Columns returns the registered plain column names, sorted.
func (r *Registry) Columns() []string {
	return sortedMapKeys(r.keys)
}

// Close zeroes all key material and empties the registry.
func (r *Registry) Close() {
	for plain, key := range r.keys {
		zero(key)
		delete(r.keys, plain)
	}
}

// sortedMapKeys returns map keys sorted alphabetically.
func sortedMapKeys[V any](m map[string]V) []string {
	ids := lo.Keys(m)
	sort.Strings(ids)
	return ids
}

func copyKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)
	return out
}
