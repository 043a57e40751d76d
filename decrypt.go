package dataprep

import (
	"fmt"
)

// Decryptor reverses an Anonymizer, using the keys held by the same Registry.
type Decryptor struct {
	registry *Registry
	cipher   *Cipher
}

// NewDecryptor returns a Decryptor that reads keys from registry.
func NewDecryptor(registry *Registry, cipher *Cipher) *Decryptor {
	return &Decryptor{registry: registry, cipher: cipher}
}

// DecryptColumn decrypts every cell of anonName, renames the column back to
// its plain name and releases the key.
//
// If any token fails to decrypt the column is left exactly as it was and the
// key stays registered; the error wraps ErrDecryptionFailed and names the row.
func (d *Decryptor) DecryptColumn(t Table, anonName string) error {
	plain, err := PlainName(anonName)
	if err != nil {
		return err
	}
	key, err := d.registry.KeyFor(plain)
	if err != nil {
		return err
	}
	defer zero(key)

	values, err := t.Column(anonName)
	if err != nil {
		return err
	}
	opened, err := d.openAll(key, values)
	if err != nil {
		return fmt.Errorf("decrypt %q: %w", anonName, err)
	}
	if err := t.SetColumn(anonName, opened); err != nil {
		return err
	}
	if err := t.RenameColumn(anonName, plain); err != nil {
		return err
	}
	return d.registry.Release(plain)
}

// DecryptEntry decrypts a single token taken from column anonName. It reads
// the registry but never changes it or any table.
func (d *Decryptor) DecryptEntry(entry string, anonName string) (string, error) {
	plain, err := PlainName(anonName)
	if err != nil {
		return "", err
	}
	key, err := d.registry.KeyFor(plain)
	if err != nil {
		return "", err
	}
	defer zero(key)

	return d.cipher.OpenString(key, entry)
}

// openAll maps every non-nil cell back to its plaintext.
func (d *Decryptor) openAll(key []byte, values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		token, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("row %d: %w: cell holds %T", i, ErrDecryptionFailed, v)
		}
		plaintext, err := d.cipher.OpenString(key, token)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = plaintext
	}
	return out, nil
}
