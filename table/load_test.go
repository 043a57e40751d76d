package table

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleJSONLines = `{"id": 1, "name": "alice", "score": 9.5}
{"id": 2, "name": "bob", "tags": ["a", "b"]}

{"name": "carol", "id": 3, "active": true, "meta": {"x": 1}}
`

func TestReadJSONLines(t *testing.T) {
	tbl, err := ReadJSONLines(strings.NewReader(sampleJSONLines))
	require.NoError(t, err)

	require.Equal(t, []string{"id", "name", "score", "tags", "active", "meta"}, tbl.Columns())
	require.Equal(t, 3, tbl.NumRows())

	ids, _ := tbl.Column("id")
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, ids)

	scores, _ := tbl.Column("score")
	require.Equal(t, []any{9.5, nil, nil}, scores)

	tags, _ := tbl.Column("tags")
	require.Equal(t, []any{nil, []any{"a", "b"}, nil}, tags)

	meta, _ := tbl.Column("meta")
	require.Equal(t, map[string]any{"x": int64(1)}, meta[2])
}

func TestReadJSONLines_Empty(t *testing.T) {
	tbl, err := ReadJSONLines(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, 0, tbl.NumRows())
	require.Empty(t, tbl.Columns())
}

func TestReadJSONLines_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array record", `[1, 2]`},
		{"scalar record", `42`},
		{"truncated", `{"a": 1`},
		{"bad value", `{"a": }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSONLines(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestLoad_NoDataSource(t *testing.T) {
	_, err := Load(context.Background(), Source{})
	require.ErrorIs(t, err, ErrNoDataSource)

	_, err = Load(context.Background(), Source{Path: "a.json", URL: "http://example.com/a.json"})
	require.ErrorIs(t, err, ErrNoDataSource)
}

func TestLoad_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONLines), 0o644))

	tbl, err := Load(context.Background(), Source{Path: path})
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), Source{Path: filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoDataSource)
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleJSONLines))
	}))
	defer srv.Close()

	tbl, err := Load(context.Background(), Source{URL: srv.URL + "/events.json"})
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())
}

func TestLoad_URLRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"a": 1}`))
	}))
	defer srv.Close()

	client := NewHTTPClient()
	client.RetryWaitMin = 0
	client.RetryWaitMax = 0

	tbl, err := Load(context.Background(), Source{URL: srv.URL}, WithHTTPClient(client))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())
	require.Equal(t, int32(2), calls.Load())
}

func TestLoad_URLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Load(context.Background(), Source{URL: srv.URL})
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestLoad_Parquet(t *testing.T) {
	tbl, err := ReadJSONLines(strings.NewReader(sampleJSONLines))
	require.NoError(t, err)

	base := filepath.Join(t.TempDir(), "data")
	written, err := tbl.Save(base, FormatParquet)
	require.NoError(t, err)
	require.Equal(t, []string{base + ".parquet"}, written)

	loaded, err := Load(context.Background(), Source{ParquetPath: base + ".parquet"})
	require.NoError(t, err)
	require.Equal(t, tbl.Columns(), loaded.Columns())
	require.Equal(t, 3, loaded.NumRows())
}
