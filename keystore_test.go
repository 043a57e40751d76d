package dataprep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stageKey(t *testing.T, s *FileKeyStore, id string, key []byte) *PendingKey {
	t.Helper()
	w, err := s.Stage(id)
	require.NoError(t, err)
	_, err = w.Write(key)
	require.NoError(t, err)
	return w
}

func TestFileKeyStore_StageLoad(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	require.Equal(t, filepath.Join(s.Dir, "email.key"), s.Path("email"))

	w := stageKey(t, s, "email", testKey("k1"))
	_, err := os.Stat(s.Path("email"))
	require.ErrorIs(t, err, os.ErrNotExist, "key visible before commit")
	require.NoError(t, w.Commit())

	info, err := os.Stat(s.Path("email"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key, err := s.Load("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k1"), key)

	require.NoError(t, s.Remove("email"))
	_, err = s.Load("email")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileKeyStore_CommitReplaces(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	require.NoError(t, stageKey(t, s, "email", testKey("k1")).Commit())
	require.NoError(t, stageKey(t, s, "email", testKey("k2")).Commit())

	key, err := s.Load("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k2"), key)

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileKeyStore_DiscardKeepsPrevious(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	require.NoError(t, stageKey(t, s, "email", testKey("k1")).Commit())

	stageKey(t, s, "email", testKey("k2")).Discard()

	key, err := s.Load("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k1"), key)

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "staged file left behind")
}

func TestFileKeyStore_LoadWrongSize(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.Path("bad"), []byte("short"), 0o600))

	_, err := s.Load("bad")
	require.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestFileKeyStore_InvalidIDs(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	for _, id := range []string{"", ".", "..", "../escape", `a\b`} {
		_, err := s.Stage(id)
		require.Error(t, err, "id %q", id)
		_, err = s.Load(id)
		require.Error(t, err, "id %q", id)
	}
}

func TestKeysJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	keys := map[string][]byte{"email": testKey("k1"), "phone": testKey("k2")}

	require.NoError(t, writeKeysJSON(path, keys))
	back, err := ReadKeysJSON(path)
	require.NoError(t, err)
	require.Equal(t, keys, back)

	_, err = ReadKeysJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
