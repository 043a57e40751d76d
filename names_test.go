package dataprep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnonymizedName(t *testing.T) {
	require.Equal(t, "email_anon", AnonymizedName("email"))
}

func TestHasAnonymizedMarker(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"email_anon", true},
		{"a_anon", true},
		{"_anon", false},
		{"email", false},
		{"user_anon_id", false},
		{"email_ANON", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HasAnonymizedMarker(tt.name))
		})
	}
}

func TestPlainName(t *testing.T) {
	plain, err := PlainName("email_anon")
	require.NoError(t, err)
	require.Equal(t, "email", plain)

	plain, err = PlainName("x_anon_anon")
	require.NoError(t, err)
	require.Equal(t, "x_anon", plain)

	_, err = PlainName("email")
	require.ErrorIs(t, err, ErrNotAnonymizedName)
}
