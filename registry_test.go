package dataprep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterKeyFor(t *testing.T) {
	r := NewRegistry()
	require.False(t, r.IsAnonymized("email"))

	key := testKey("k1")
	require.NoError(t, r.Register("email", key))
	require.True(t, r.IsAnonymized("email"))

	got, err := r.KeyFor("email")
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestRegistry_CopiesKeys(t *testing.T) {
	r := NewRegistry()
	key := testKey("k1")
	require.NoError(t, r.Register("email", key))

	// Mutating the caller's slice does not reach the registry.
	key[0] ^= 0xff
	got, err := r.KeyFor("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k1"), got)

	// Nor does mutating a returned copy.
	got[1] ^= 0xff
	again, err := r.KeyFor("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k1"), again)
}

func TestRegistry_RegisterTwice(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("email", testKey("k1")))
	require.ErrorIs(t, r.Register("email", testKey("k2")), ErrAlreadyAnonymized)
}

func TestRegistry_InvalidKeySize(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Register("email", []byte("short")), ErrInvalidKeySize)
	require.False(t, r.IsAnonymized("email"))
}

func TestRegistry_Release(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("email", testKey("k1")))
	require.NoError(t, r.Release("email"))

	require.False(t, r.IsAnonymized("email"))
	_, err := r.KeyFor("email")
	require.ErrorIs(t, err, ErrUnknownColumn)
	require.ErrorIs(t, r.Release("email"), ErrUnknownColumn)

	// A released column can be registered again.
	require.NoError(t, r.Register("email", testKey("k2")))
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Replace("email", testKey("k2")), ErrUnknownColumn)

	require.NoError(t, r.Register("email", testKey("k1")))
	require.ErrorIs(t, r.Replace("email", []byte("short")), ErrInvalidKeySize)
	require.NoError(t, r.Replace("email", testKey("k2")))

	got, err := r.KeyFor("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k2"), got)
}

func TestRegistry_AllKeysAndColumns(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.AllKeys())
	require.Empty(t, r.Columns())

	require.NoError(t, r.Register("phone", testKey("k2")))
	require.NoError(t, r.Register("email", testKey("k1")))

	all := r.AllKeys()
	require.Equal(t, map[string][]byte{"email": testKey("k1"), "phone": testKey("k2")}, all)
	require.Equal(t, []string{"email", "phone"}, r.Columns())

	all["email"][0] ^= 0xff
	got, err := r.KeyFor("email")
	require.NoError(t, err)
	require.Equal(t, testKey("k1"), got)
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("email", testKey("k1")))
	r.Close()

	require.False(t, r.IsAnonymized("email"))
	require.Empty(t, r.AllKeys())
}
