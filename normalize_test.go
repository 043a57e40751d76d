package dataprep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name       string
		normalizer Normalizer
		input      string
		expected   string
	}{
		{"none keeps input", NormalizeNone, " Red ", " Red "},
		{"trim", NormalizeTrim, " Red ", "Red"},
		{"trim keeps case", NormalizeTrim, "RED", "RED"},
		{"lower", NormalizeLower, " Red ", " red "},
		{"caseless", NormalizeCaseless, " Alice@Example.COM ", "alice@example.com"},
		{"caseless empty", NormalizeCaseless, "  ", ""},
		{"caseless unicode", NormalizeCaseless, "ÉCOLE", "école"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.normalizer(tt.input))
		})
	}
}

func TestNormalizers_Idempotent(t *testing.T) {
	for _, n := range []Normalizer{NormalizeNone, NormalizeTrim, NormalizeLower, NormalizeCaseless} {
		once := n(" MiXeD Case ")
		require.Equal(t, once, n(once))
	}
}
