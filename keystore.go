package dataprep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileExt is the extension of persisted key files.
const KeyFileExt = ".key"

// FileKeyStore persists raw column keys as <Dir>/<id>.key.
type FileKeyStore struct {
	Dir string
}

// NewFileKeyStore returns a store rooted at dir.
func NewFileKeyStore(dir string) *FileKeyStore {
	return &FileKeyStore{Dir: dir}
}

// Path returns the file a key with the given id is stored in.
func (s *FileKeyStore) Path(id string) string {
	return filepath.Join(s.Dir, id+KeyFileExt)
}

// Stage starts writing a new key for id. The key lands in <Dir>/<id>.key only
// on Commit; until then any previous key file is untouched.
func (s *FileKeyStore) Stage(id string) (*PendingKey, error) {
	if err := validateKeyID(id); err != nil {
		return nil, err
	}
	// CreateTemp opens with mode 0600.
	f, err := os.CreateTemp(s.Dir, "."+id+"-*"+KeyFileExt+".tmp")
	if err != nil {
		return nil, fmt.Errorf("create key file: %w", err)
	}
	return &PendingKey{f: f, target: s.Path(id)}, nil
}

// PendingKey is a key file being written by FileKeyStore.Stage.
type PendingKey struct {
	f      *os.File
	target string
}

func (k *PendingKey) Write(p []byte) (int, error) {
	return k.f.Write(p)
}

// Commit moves the staged key into place, replacing any previous key.
func (k *PendingKey) Commit() error {
	tmp := k.f.Name()
	if err := k.f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close key file: %w", err)
	}
	if err := os.Rename(tmp, k.target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("install key file: %w", err)
	}
	return nil
}

// Discard drops the staged key, leaving any previous key file as it was.
func (k *PendingKey) Discard() {
	k.f.Close()
	os.Remove(k.f.Name())
}

// Load reads the key stored under id.
func (s *FileKeyStore) Load(id string) ([]byte, error) {
	if err := validateKeyID(id); err != nil {
		return nil, err
	}
	key, err := os.ReadFile(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(key) != KeySize {
		zero(key)
		return nil, fmt.Errorf("%s: %w", s.Path(id), ErrInvalidKeySize)
	}
	return key, nil
}

// Remove deletes the key file for id.
func (s *FileKeyStore) Remove(id string) error {
	if err := validateKeyID(id); err != nil {
		return err
	}
	return os.Remove(s.Path(id))
}

// validateKeyID rejects ids that would escape the store's directory.
func validateKeyID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid key id %q", id)
	}
	return nil
}

// writeKeysJSON writes keys as an indented JSON object of base64 strings.
func writeKeysJSON(path string, keys map[string][]byte) error {
	bs, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keys: %w", err)
	}
	if err := os.WriteFile(path, bs, 0o600); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

// ReadKeysJSON reads a key map written by Preprocessor.ExportKeys.
func ReadKeysJSON(path string) (map[string][]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	keys := make(map[string][]byte)
	if err := json.Unmarshal(bs, &keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	return keys, nil
}
