package dataprep

import (
	"fmt"
	"io"

	"github.com/ai8future/dataprep/table"
)

// Table is the column store anonymization, decryption and indexing work on.
// *table.Table implements it.
type Table interface {
	HasColumn(name string) bool
	Column(name string) ([]any, error)
	SetColumn(name string, values []any) error
	RenameColumn(oldName, newName string) error
}

var _ Table = (*table.Table)(nil)

// Anonymizer replaces a column's values with tokens under a fresh key and
// records the key in a Registry.
type Anonymizer struct {
	registry *Registry
	cipher   *Cipher
}

// NewAnonymizer returns an Anonymizer that registers keys in registry.
func NewAnonymizer(registry *Registry, cipher *Cipher) *Anonymizer {
	return &Anonymizer{registry: registry, cipher: cipher}
}

// Anonymize encrypts every cell of column plain, renames the column to
// AnonymizedName(plain) and registers its key under plain.
//
// Cells are rendered with table.Stringify before encryption; nil cells stay
// nil. If keyDest is non-nil the raw key is written to it before any cell is
// touched, and a write failure leaves the table and registry unchanged.
func (a *Anonymizer) Anonymize(t Table, plain string, keyDest io.Writer) error {
	if a.registry.IsAnonymized(plain) {
		return fmt.Errorf("%w: %q", ErrAlreadyAnonymized, plain)
	}
	if !t.HasColumn(plain) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, plain)
	}
	anonName := AnonymizedName(plain)
	if t.HasColumn(anonName) {
		return fmt.Errorf("%w: %q", ErrColumnExists, anonName)
	}

	key, err := GenerateKey()
	if err != nil {
		return err
	}
	defer zero(key)

	if keyDest != nil {
		if _, err := keyDest.Write(key); err != nil {
			return fmt.Errorf("persist key for %q: %w", plain, err)
		}
	}

	values, err := t.Column(plain)
	if err != nil {
		return err
	}
	sealed, err := a.sealAll(key, values)
	if err != nil {
		return fmt.Errorf("anonymize %q: %w", plain, err)
	}
	if err := t.SetColumn(plain, sealed); err != nil {
		return err
	}
	if err := t.RenameColumn(plain, anonName); err != nil {
		return err
	}
	return a.registry.Register(plain, key)
}

// sealAll maps every non-nil cell to its token.
func (a *Anonymizer) sealAll(key []byte, values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		token, err := a.cipher.SealString(key, table.Stringify(v))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = token
	}
	return out, nil
}
