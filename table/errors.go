package table

import "errors"

var (
	// ErrNoDataSource indicates a load was given no source, or more than one.
	ErrNoDataSource = errors.New("dataprep: exactly one data source required")

	// ErrUnknownColumn indicates a referenced column does not exist.
	ErrUnknownColumn = errors.New("dataprep: unknown column")

	// ErrColumnExists indicates a column name is already taken.
	ErrColumnExists = errors.New("dataprep: column already exists")

	// ErrRowCount indicates a column or row does not match the table's shape.
	ErrRowCount = errors.New("dataprep: row count mismatch")

	// ErrNotNumeric indicates a ranked column holds a null or non-numeric value.
	ErrNotNumeric = errors.New("dataprep: column is not numeric")

	// ErrUnsupportedFormat indicates input that is not a JSON object per line,
	// or an unknown export format name.
	ErrUnsupportedFormat = errors.New("dataprep: unsupported format")
)
