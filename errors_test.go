package dataprep

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func allErrors() []error {
	return []error{
		ErrNoDataSource,
		ErrUnknownColumn,
		ErrColumnExists,
		ErrNotNumeric,
		ErrUnsupportedFormat,
		ErrAlreadyAnonymized,
		ErrNotAnonymizedName,
		ErrDecryptionFailed,
		ErrInvalidFormat,
		ErrInvalidKeySize,
		ErrDecompressionFailed,
		ErrNoData,
	}
}

func TestErrors_Identity(t *testing.T) {
	errs := allErrors()
	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j {
				require.False(t, errors.Is(err1, err2), "different errors should not be equal: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrors_Messages(t *testing.T) {
	for _, err := range allErrors() {
		require.Contains(t, err.Error(), "dataprep:")
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("column %q: %w", "email", ErrUnknownColumn)
	require.ErrorIs(t, wrapped, ErrUnknownColumn)

	joined := errors.Join(ErrDecryptionFailed, ErrInvalidFormat)
	require.ErrorIs(t, joined, ErrDecryptionFailed)
	require.ErrorIs(t, joined, ErrInvalidFormat)
}
