package table

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"
	"github.com/apache/arrow/go/v15/parquet"
	"github.com/apache/arrow/go/v15/parquet/compress"
	"github.com/apache/arrow/go/v15/parquet/pqarrow"
)

// Column types are inferred from the non-null cells:
//
//	all int64            -> int64
//	int64 and float64    -> float64
//	all bool             -> boolean
//	all []any            -> list of the type inferred over every element
//	all null             -> string
//	anything else        -> string, cells rendered with Stringify
type kind int

const (
	kindNull kind = iota
	kindInt
	kindFloat
	kindBool
	kindString
	kindList
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case int64:
		return kindInt
	case float64:
		return kindFloat
	case bool:
		return kindBool
	case []any:
		return kindList
	default:
		return kindString
	}
}

func mergeKinds(a, b kind) kind {
	switch {
	case a == b:
		return a
	case a == kindNull:
		return b
	case b == kindNull:
		return a
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	default:
		return kindString
	}
}

// arrowType infers the Arrow type of a column.
func arrowType(values []any) arrow.DataType {
	k := kindNull
	for _, v := range values {
		k = mergeKinds(k, kindOf(v))
	}
	switch k {
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	case kindList:
		var items []any
		for _, v := range values {
			if list, ok := v.([]any); ok {
				items = append(items, list...)
			}
		}
		return arrow.ListOf(arrowType(items))
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.Int64Builder:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("cannot store %T as int64", v)
		}
		b.Append(n)
	case *array.Float64Builder:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("cannot store %T as float64", v)
		}
		b.Append(f)
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot store %T as boolean", v)
		}
		b.Append(x)
	case *array.StringBuilder:
		b.Append(Stringify(v))
	case *array.ListBuilder:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("cannot store %T as list", v)
		}
		b.Append(true)
		vb := b.ValueBuilder()
		for _, item := range items {
			if err := appendValue(vb, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

// WriteParquet writes the table as a single zstd-compressed Parquet file.
func (t *Table) WriteParquet(w io.Writer) error {
	mem := memory.NewGoAllocator()

	fields := make([]arrow.Field, len(t.names))
	for i, name := range t.names {
		fields[i] = arrow.Field{Name: name, Type: arrowType(t.columns[name]), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()
	for i, name := range t.names {
		for row, v := range t.columns[name] {
			if err := appendValue(rb.Field(i), v); err != nil {
				return fmt.Errorf("column %q row %d: %w", name, row, err)
			}
		}
	}
	rec := rb.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Zstd))
	chunk := int64(max(t.rows, 1))
	// pqarrow closes its sink when it is an io.Closer; the caller owns w.
	sink := struct{ io.Writer }{w}
	if err := pqarrow.WriteTable(tbl, sink, chunk, props, pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

// ReadParquet reads a Parquet file into a table. Integer columns become int64,
// floating point columns float64, and list columns []any.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (*Table, error) {
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, r, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	t := &Table{
		columns: make(map[string][]any, tbl.NumCols()),
		rows:    int(tbl.NumRows()),
	}
	for i := 0; i < int(tbl.NumCols()); i++ {
		name := tbl.Schema().Field(i).Name
		values := make([]any, 0, t.rows)
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				v, err := cellAt(chunk, j)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", name, err)
				}
				values = append(values, v)
			}
		}
		if err := t.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func cellAt(arr arrow.Array, i int) (any, error) {
	if arr.IsNull(i) {
		return nil, nil
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Binary:
		return string(a.Value(i)), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.Float32:
		return float64(a.Value(i)), nil
	case *array.Boolean:
		return a.Value(i), nil
	case *array.List:
		start, end := a.ValueOffsets(i)
		values := a.ListValues()
		items := make([]any, 0, end-start)
		for j := start; j < end; j++ {
			item, err := cellAt(values, int(j))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return a.ValueStr(i), nil
	}
}
