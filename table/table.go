// Package table defines the Arrow-backed table that winnow pipelines
// load, derive, filter, and save.
package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Pool is the Go memory allocator used by Arrow.
var Pool = memory.NewGoAllocator()

// Column names recognized in input files and added during processing.
const (
	ColID       = "id"
	ColCategory = "category"
	ColValue1   = "value1"
	ColValue2   = "value2"

	ColValue1Plus10    = "value1_plus_10"
	ColValue2DivValue1 = "value2_div_value1"
	ColValue1Type      = "value1_type"
)

// Schema defines the schema for input tables. Columns derived during
// processing are appended after these four.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: ColID, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColCategory, Type: arrow.BinaryTypes.String},
	{Name: ColValue1, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColValue2, Type: arrow.PrimitiveTypes.Float64},
}, nil)

// Empty returns a zero-row table with the input schema.
func Empty(mem memory.Allocator) arrow.Record {
	builder := array.NewRecordBuilder(mem, Schema)
	defer builder.Release()
	return builder.NewRecord()
}

// IsEmpty reports whether rec holds no data at all: nil, zero rows, or
// zero columns.
func IsEmpty(rec arrow.Record) bool {
	return rec == nil || rec.NumRows() == 0 || rec.NumCols() == 0
}

// Col returns the column with the given name.
func Col(rec arrow.Record, name string) (arrow.Array, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, fmt.Errorf("no column named %q in schema", name)
	}
	return rec.Column(indices[0]), nil
}

// Int64Col returns the named column asserted to int64.
func Int64Col(rec arrow.Record, name string) (*array.Int64, error) {
	col, err := Col(rec, name)
	if err != nil {
		return nil, err
	}
	ints, ok := col.(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for %s column: %T", name, col)
	}
	return ints, nil
}

// Float64Col returns the named column asserted to float64.
func Float64Col(rec arrow.Record, name string) (*array.Float64, error) {
	col, err := Col(rec, name)
	if err != nil {
		return nil, err
	}
	floats, ok := col.(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for %s column: %T", name, col)
	}
	return floats, nil
}

// StringCol returns the named column asserted to string.
func StringCol(rec arrow.Record, name string) (*array.String, error) {
	col, err := Col(rec, name)
	if err != nil {
		return nil, err
	}
	strs, ok := col.(*array.String)
	if !ok {
		return nil, fmt.Errorf("unexpected type for %s column: %T", name, col)
	}
	return strs, nil
}

// WithColumn returns a new record extending rec with one additional column.
// The existing columns are shared, not copied. The caller keeps ownership
// of rec and arr and must still release them; the returned record holds
// its own references.
func WithColumn(rec arrow.Record, field arrow.Field, arr arrow.Array) arrow.Record {
	n := rec.Schema().NumFields()
	fields := make([]arrow.Field, 0, n+1)
	for i := 0; i < n; i++ {
		fields = append(fields, rec.Schema().Field(i))
	}
	fields = append(fields, field)

	cols := make([]arrow.Array, 0, n+1)
	cols = append(cols, rec.Columns()...)
	cols = append(cols, arr)

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
}
