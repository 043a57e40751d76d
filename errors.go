package dataprep

import (
	"errors"

	"github.com/ai8future/dataprep/table"
)

var (
	// ErrNoDataSource indicates a load was given neither a path, a URL nor a
	// Parquet file, or more than one of them.
	ErrNoDataSource = table.ErrNoDataSource

	// ErrUnknownColumn indicates a column is absent from the table or has no key in the registry.
	ErrUnknownColumn = table.ErrUnknownColumn

	// ErrColumnExists indicates a rename target is already a live column.
	ErrColumnExists = table.ErrColumnExists

	// ErrNotNumeric indicates a ranked column holds a null or non-numeric value.
	ErrNotNumeric = table.ErrNotNumeric

	// ErrUnsupportedFormat indicates input that is not JSON lines, an inverted
	// index that is not an object of lists, or an unknown export format.
	ErrUnsupportedFormat = table.ErrUnsupportedFormat

	// ErrAlreadyAnonymized indicates the column is anonymized and has not been decrypted since.
	ErrAlreadyAnonymized = errors.New("dataprep: column already anonymized")

	// ErrNotAnonymizedName indicates a column name does not end in AnonymizedSuffix.
	ErrNotAnonymizedName = errors.New("dataprep: not an anonymized column name")

	// ErrDecryptionFailed indicates secretbox authentication failed (wrong key or corrupted token).
	ErrDecryptionFailed = errors.New("dataprep: decryption failed")

	// ErrInvalidFormat indicates a token is not valid base64 or is too short.
	// It is always joined with ErrDecryptionFailed.
	ErrInvalidFormat = errors.New("dataprep: invalid token format")

	// ErrInvalidKeySize indicates a column key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("dataprep: key must be 32 bytes")

	// ErrDecompressionFailed indicates zstd decompression of a token's payload failed.
	ErrDecompressionFailed = errors.New("dataprep: decompression failed")

	// ErrNoData indicates an operation ran before any table was imported.
	ErrNoData = errors.New("dataprep: no data imported")
)
