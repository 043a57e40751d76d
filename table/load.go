package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// Source names where a table is loaded from. Exactly one field must be set.
type Source struct {
	// Path is a local JSON lines file.
	Path string
	// URL is a JSON lines document served over HTTP(S).
	URL string
	// ParquetPath is a local Parquet file.
	ParquetPath string
}

func (s Source) String() string {
	switch {
	case s.Path != "":
		return s.Path
	case s.URL != "":
		return s.URL
	default:
		return s.ParquetPath
	}
}

func (s Source) count() int {
	n := 0
	for _, v := range []string{s.Path, s.URL, s.ParquetPath} {
		if v != "" {
			n++
		}
	}
	return n
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	client *retryablehttp.Client
}

// WithHTTPClient sets the client used to fetch URL sources.
func WithHTTPClient(c *retryablehttp.Client) LoadOption {
	return func(cfg *loadConfig) {
		cfg.client = c
	}
}

// NewHTTPClient returns the retrying client Load uses by default.
func NewHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient.Timeout = 2 * time.Minute
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 10 * time.Second
	// retryablehttp's own logger is replaced by the hook below.
	c.Logger = nil
	c.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			log.Infof("fetching dataset: url=%s", req.URL.String())
		} else {
			log.Infof("retrying dataset fetch: attempt=%d, url=%s", attempt+1, req.URL.String())
		}
	}
	return c
}

// Load reads a table from src.
func Load(ctx context.Context, src Source, opts ...LoadOption) (*Table, error) {
	if src.count() != 1 {
		return nil, ErrNoDataSource
	}
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch {
	case src.Path != "":
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.Path, err)
		}
		defer f.Close()
		t, err := ReadJSONLines(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Path, err)
		}
		return t, nil
	case src.URL != "":
		client := cfg.client
		if client == nil {
			client = NewHTTPClient()
		}
		return fetchJSONLines(ctx, client, src.URL)
	default:
		f, err := os.Open(src.ParquetPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.ParquetPath, err)
		}
		defer f.Close()
		t, err := ReadParquet(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.ParquetPath, err)
		}
		return t, nil
	}
}

func fetchJSONLines(ctx context.Context, client *retryablehttp.Client, url string) (*Table, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", url, err)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	t, err := ReadJSONLines(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	log.Infof("fetched dataset: url=%s, rows=%d, duration=%s", url, t.NumRows(), time.Since(start))
	return t, nil
}

// ReadJSONLines decodes one JSON object per record. Columns appear in the order
// their keys are first seen; a record missing a key gets null in that column.
func ReadJSONLines(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	b := &builder{index: make(map[string]int)}
	for n := 1; ; n++ {
		rec, err := decodeRecord(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		b.add(rec)
	}
	return b.table(), nil
}

type field struct {
	name  string
	value any
}

// decodeRecord reads one top-level object, keeping its key order.
func decodeRecord(dec *json.Decoder) ([]field, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object, got %v", ErrUnsupportedFormat, tok)
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", ErrUnsupportedFormat, tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, unexpectedEOF(err))
		}
		value, err := fromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, field{name: name, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, unexpectedEOF(err)
	}
	return fields, nil
}

// unexpectedEOF keeps a truncated object from reading as a clean end of input.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// builder accumulates records whose key sets may differ.
type builder struct {
	names []string
	index map[string]int
	cols  [][]any
	rows  int
}

func (b *builder) add(fields []field) {
	for i := range b.cols {
		b.cols[i] = append(b.cols[i], nil)
	}
	for _, f := range fields {
		i, ok := b.index[f.name]
		if !ok {
			i = len(b.names)
			b.index[f.name] = i
			b.names = append(b.names, f.name)
			b.cols = append(b.cols, make([]any, b.rows+1))
		}
		b.cols[i][b.rows] = f.value
	}
	b.rows++
}

func (b *builder) table() *Table {
	t := &Table{
		names:   b.names,
		columns: make(map[string][]any, len(b.names)),
		rows:    b.rows,
	}
	for i, name := range b.names {
		t.columns[name] = b.cols[i]
	}
	return t
}
