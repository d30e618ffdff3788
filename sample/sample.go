// Package sample generates the small synthetic table used when no input
// file exists yet.
package sample

import (
	"math/rand"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/winnow/table"
)

// Rows is the number of rows in a generated table.
const Rows = 5

// categories is the fixed category assignment for generated rows.
var categories = []string{"A", "B", "A", "C", "B"}

// Generator produces synthetic input tables. The random source is
// injected so callers can fix a seed for reproducible output.
type Generator struct {
	mem memory.Allocator
	rng *rand.Rand
}

// New returns a Generator seeded from the current time.
func New(mem memory.Allocator) *Generator {
	return NewSeeded(mem, time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(mem memory.Allocator, seed int64) *Generator {
	return &Generator{
		mem: mem,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Table builds one batch of sample rows: sequential ids starting at 1,
// the fixed category assignment, value1 drawn from [10, 50) and value2
// from [0, 100).
func (g *Generator) Table() arrow.Record {
	builder := array.NewRecordBuilder(g.mem, table.Schema)
	defer builder.Release()

	ids := builder.Field(0).(*array.Int64Builder)
	cats := builder.Field(1).(*array.StringBuilder)
	value1 := builder.Field(2).(*array.Int64Builder)
	value2 := builder.Field(3).(*array.Float64Builder)

	for i := 0; i < Rows; i++ {
		ids.Append(int64(i + 1))
		cats.Append(categories[i%len(categories)])
		value1.Append(10 + g.rng.Int63n(40))
		value2.Append(g.rng.Float64() * 100)
	}
	return builder.NewRecord()
}
