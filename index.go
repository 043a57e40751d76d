package dataprep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ai8future/dataprep/table"
)

// Column names given to an index read back from JSON, where the source
// columns are unknown.
const (
	defaultIndexKeyColumn   = "key"
	defaultIndexValueColumn = "values"
)

// InvertedIndex maps each distinct key-column value to the value-column values
// of the rows holding it, in row order and with duplicates kept. Keys are kept
// in order of first occurrence.
type InvertedIndex struct {
	KeyColumn   string
	ValueColumn string

	keys    []string
	entries map[string][]any
}

func newInvertedIndex(keyColumn, valueColumn string) *InvertedIndex {
	return &InvertedIndex{
		KeyColumn:   keyColumn,
		ValueColumn: valueColumn,
		entries:     make(map[string][]any),
	}
}

func (ix *InvertedIndex) add(key string, value any) {
	if _, ok := ix.entries[key]; !ok {
		ix.keys = append(ix.keys, key)
	}
	ix.entries[key] = append(ix.entries[key], value)
}

// Keys returns the index keys in order of first occurrence.
func (ix *InvertedIndex) Keys() []string {
	return append([]string(nil), ix.keys...)
}

// Values returns the values recorded under key, or nil.
func (ix *InvertedIndex) Values(key string) []any {
	return append([]any(nil), ix.entries[key]...)
}

// Len returns the number of distinct keys.
func (ix *InvertedIndex) Len() int {
	return len(ix.keys)
}

// IndexOption configures BuildInvertedIndex.
type IndexOption func(*indexConfig)

type indexConfig struct {
	normalize Normalizer
}

// WithKeyNormalizer normalizes stringified keys before grouping.
func WithKeyNormalizer(n Normalizer) IndexOption {
	return func(c *indexConfig) {
		c.normalize = n
	}
}

// BuildInvertedIndex scans t once in row order and groups valueColumn's cells
// under the stringified keyColumn cell of the same row.
func BuildInvertedIndex(t Table, keyColumn, valueColumn string, opts ...IndexOption) (*InvertedIndex, error) {
	cfg := &indexConfig{normalize: NormalizeNone}
	for _, opt := range opts {
		opt(cfg)
	}

	keys, err := t.Column(keyColumn)
	if err != nil {
		return nil, err
	}
	values, err := t.Column(valueColumn)
	if err != nil {
		return nil, err
	}

	ix := newInvertedIndex(keyColumn, valueColumn)
	for i, k := range keys {
		ix.add(cfg.normalize(table.Stringify(k)), values[i])
	}
	return ix, nil
}

// MarshalJSON encodes the index as {"key": [values...]} with keys in order of
// first occurrence.
func (ix *InvertedIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range ix.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ix.entries[key])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of lists, keeping the object's key order.
func (ix *InvertedIndex) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return fmt.Errorf("%w: inverted index must be a JSON object", ErrUnsupportedFormat)
	}

	fresh := newInvertedIndex(ix.KeyColumn, ix.ValueColumn)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: object key %v", ErrUnsupportedFormat, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		v, err := table.ParseJSONValue(raw)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: key %q holds %T, not a list", ErrUnsupportedFormat, key, v)
		}
		if _, dup := fresh.entries[key]; !dup {
			fresh.keys = append(fresh.keys, key)
		}
		fresh.entries[key] = list
	}
	ix.keys, ix.entries = fresh.keys, fresh.entries
	return nil
}

// Table re-flattens the index into one record per key: the key under
// KeyColumn and its list of values under ValueColumn.
func (ix *InvertedIndex) Table() (*table.Table, error) {
	valueName := ix.ValueColumn
	if valueName == ix.KeyColumn {
		valueName += "_" + defaultIndexValueColumn
	}
	keys := make([]any, len(ix.keys))
	lists := make([]any, len(ix.keys))
	for i, key := range ix.keys {
		keys[i] = key
		lists[i] = append([]any{}, ix.entries[key]...)
	}
	return table.FromColumns([]string{ix.KeyColumn, valueName}, keys, lists)
}

// WriteJSON writes the index as a single JSON object.
func (ix *InvertedIndex) WriteJSON(w io.Writer) error {
	bs, err := ix.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}

// WriteParquet writes the re-flattened index, with a list column holding each
// key's values.
func (ix *InvertedIndex) WriteParquet(w io.Writer) error {
	t, err := ix.Table()
	if err != nil {
		return err
	}
	return t.WriteParquet(w)
}

// Save writes <name>.json and, if parquet is set, <name>.parquet, returning
// the paths written.
func (ix *InvertedIndex) Save(name string, parquet bool) ([]string, error) {
	var written []string
	if err := saveFile(name+".json", ix.WriteJSON); err != nil {
		return written, err
	}
	written = append(written, name+".json")
	if parquet {
		if err := saveFile(name+".parquet", ix.WriteParquet); err != nil {
			return written, err
		}
		written = append(written, name+".parquet")
	}
	return written, nil
}

// ReadInvertedIndexJSON reads an index written by WriteJSON. The source
// column names are not stored, so the index gets KeyColumn "key" and
// ValueColumn "values".
func ReadInvertedIndexJSON(path string) (*InvertedIndex, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	ix := newInvertedIndex(defaultIndexKeyColumn, defaultIndexValueColumn)
	if err := ix.UnmarshalJSON(bs); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ix, nil
}

func saveFile(path string, write func(io.Writer) error) error {
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
