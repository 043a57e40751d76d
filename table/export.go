package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects export formats. Formats combine with |.
type Format uint8

const (
	// FormatJSON writes one JSON object per line to <name>.json.
	FormatJSON Format = 1 << iota
	// FormatCSV writes a header row and one line per record to <name>.csv.
	FormatCSV
	// FormatParquet writes <name>.parquet.
	FormatParquet
)

var formatNames = []struct {
	format Format
	name   string
	ext    string
}{
	{FormatJSON, "json", ".json"},
	{FormatCSV, "csv", ".csv"},
	{FormatParquet, "parquet", ".parquet"},
}

// Has reports whether f includes every format in o.
func (f Format) Has(o Format) bool {
	return f&o == o
}

func (f Format) String() string {
	var names []string
	for _, fn := range formatNames {
		if f.Has(fn.format) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseFormats parses format names such as "json", "csv" and "parquet".
func ParseFormats(names ...string) (Format, error) {
	var f Format
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		found := false
		for _, fn := range formatNames {
			if fn.name == name {
				f |= fn.format
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
		}
	}
	return f, nil
}

// Save writes the table to <name><ext> for every requested format and returns
// the paths written.
func (t *Table) Save(name string, formats Format) ([]string, error) {
	var written []string
	for _, fn := range formatNames {
		if !formats.Has(fn.format) {
			continue
		}
		path := name + fn.ext
		if err := writeFile(path, t.writerFor(fn.format)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (t *Table) writerFor(f Format) func(io.Writer) error {
	switch f {
	case FormatCSV:
		return t.WriteCSV
	case FormatParquet:
		return t.WriteParquet
	default:
		return t.WriteJSONLines
	}
}

// writeFile creates path and hands it to write, closing it either way.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteJSONLines writes one JSON object per record, keys in column order.
func (t *Table) WriteJSONLines(w io.Writer) error {
	bw := bufio.NewWriter(w)
	keys := make([][]byte, len(t.names))
	for i, name := range t.names {
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	for row := 0; row < t.rows; row++ {
		bw.WriteByte('{')
		for i, name := range t.names {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.Write(keys[i])
			bw.WriteByte(':')
			v, err := json.Marshal(t.columns[name][row])
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", name, row, err)
			}
			bw.Write(v)
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}

// WriteCSV writes a header row followed by one line per record. Null cells are
// written as empty fields; other cells are rendered with Stringify.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.names); err != nil {
		return err
	}
	record := make([]string, len(t.names))
	for row := 0; row < t.rows; row++ {
		for i, name := range t.names {
			v := t.columns[name][row]
			if v == nil {
				record[i] = ""
			} else {
				record[i] = Stringify(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
