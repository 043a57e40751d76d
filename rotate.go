package dataprep

import (
	"fmt"
	"io"
)

// Rekey re-encrypts an anonymized column under a fresh key and replaces the
// registered key. Use this to rotate a key that may have leaked.
//
// If keyDest is non-nil the new raw key is written to it first. A write
// failure or an undecryptable cell leaves the column and the registered key
// unchanged.
func (a *Anonymizer) Rekey(t Table, anonName string, keyDest io.Writer) error {
	plain, err := PlainName(anonName)
	if err != nil {
		return err
	}
	oldKey, err := a.registry.KeyFor(plain)
	if err != nil {
		return err
	}
	defer zero(oldKey)

	values, err := t.Column(anonName)
	if err != nil {
		return err
	}

	newKey, err := GenerateKey()
	if err != nil {
		return err
	}
	defer zero(newKey)

	if keyDest != nil {
		if _, err := keyDest.Write(newKey); err != nil {
			return fmt.Errorf("persist key for %q: %w", plain, err)
		}
	}

	rotated := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		token, ok := v.(string)
		if !ok {
			return fmt.Errorf("rekey %q row %d: %w: cell holds %T", anonName, i, ErrDecryptionFailed, v)
		}
		plaintext, err := a.cipher.OpenString(oldKey, token)
		if err != nil {
			return fmt.Errorf("rekey %q row %d: %w", anonName, i, err)
		}
		if rotated[i], err = a.cipher.SealString(newKey, plaintext); err != nil {
			return fmt.Errorf("rekey %q row %d: %w", anonName, i, err)
		}
	}

	if err := t.SetColumn(anonName, rotated); err != nil {
		return err
	}
	return a.registry.Replace(plain, newKey)
}
