package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Select materializes the rows of rec whose positions are set in sel,
// in ascending position order, as a new record. Positions past the last
// row are an error.
func Select(mem memory.Allocator, rec arrow.Record, sel *roaring.Bitmap) (arrow.Record, error) {
	builder := array.NewRecordBuilder(mem, rec.Schema())
	defer builder.Release()

	it := sel.Iterator()
	for it.HasNext() {
		row := int(it.Next())
		if row >= int(rec.NumRows()) {
			return nil, fmt.Errorf("selected position %d out of range for %d rows", row, rec.NumRows())
		}
		for c := 0; c < int(rec.NumCols()); c++ {
			if err := appendRowValue(builder.Field(c), rec.Column(c), row); err != nil {
				return nil, err
			}
		}
	}
	return builder.NewRecord(), nil
}

// Concat copies the rows of each record, in order, into a single record
// with the given schema. An empty input produces a zero-row record.
func Concat(mem memory.Allocator, schema *arrow.Schema, recs []arrow.Record) (arrow.Record, error) {
	if len(recs) == 1 {
		recs[0].Retain()
		return recs[0], nil
	}

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, rec := range recs {
		if int(rec.NumCols()) != schema.NumFields() {
			return nil, fmt.Errorf("record has %d columns, schema has %d fields", rec.NumCols(), schema.NumFields())
		}
		for row := 0; row < int(rec.NumRows()); row++ {
			for c := 0; c < int(rec.NumCols()); c++ {
				if err := appendRowValue(builder.Field(c), rec.Column(c), row); err != nil {
					return nil, err
				}
			}
		}
	}
	return builder.NewRecord(), nil
}

// appendRowValue copies one cell from col into the matching builder.
func appendRowValue(b array.Builder, col arrow.Array, row int) error {
	if col.IsNull(row) {
		b.AppendNull()
		return nil
	}
	switch src := col.(type) {
	case *array.Int64:
		b.(*array.Int64Builder).Append(src.Value(row))
	case *array.Float64:
		b.(*array.Float64Builder).Append(src.Value(row))
	case *array.String:
		b.(*array.StringBuilder).Append(src.Value(row))
	default:
		return fmt.Errorf("unsupported column type: %T", col)
	}
	return nil
}

// Head renders up to n leading rows of rec as a tab-separated block with a
// header line, for log output.
func Head(rec arrow.Record, n int) string {
	var sb strings.Builder

	names := make([]string, rec.Schema().NumFields())
	for i := range names {
		names[i] = rec.Schema().Field(i).Name
	}
	sb.WriteString(strings.Join(names, "\t"))

	rows := int(rec.NumRows())
	if rows > n {
		rows = n
	}
	for row := 0; row < rows; row++ {
		sb.WriteByte('\n')
		for c := 0; c < int(rec.NumCols()); c++ {
			if c > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(cellString(rec.Column(c), row))
		}
	}
	return sb.String()
}

// cellString formats one cell for display.
func cellString(col arrow.Array, row int) string {
	if col.IsNull(row) {
		return "null"
	}
	switch src := col.(type) {
	case *array.Int64:
		return strconv.FormatInt(src.Value(row), 10)
	case *array.Float64:
		return strconv.FormatFloat(src.Value(row), 'g', -1, 64)
	case *array.String:
		return src.Value(row)
	default:
		return col.ValueStr(row)
	}
}
