// go test -bench=. -benchmem -benchtime=5s -count=5
package pipeline

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"go.uber.org/zap"

	"github.com/TFMV/winnow/sample"
	"github.com/TFMV/winnow/storage"
	"github.com/TFMV/winnow/table"
)

// Benchmark configuration
const (
	smallSize  = 1000
	mediumSize = 10000
	largeSize  = 100000
)

// createBenchRecord creates an input record with n rows for benchmarking.
func createBenchRecord(n int) arrow.Record {
	builder := array.NewRecordBuilder(table.Pool, table.Schema)
	defer builder.Release()

	ids := make([]int64, n)
	cats := make([]string, n)
	value1 := make([]int64, n)
	value2 := make([]float64, n)
	pattern := []string{"A", "B", "A", "C", "B"}
	for i := 0; i < n; i++ {
		ids[i] = int64(i + 1)
		cats[i] = pattern[i%len(pattern)]
		value1[i] = int64(10 + i%40)
		value2[i] = float64(i%100) + 0.5
	}

	builder.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
	builder.Field(1).(*array.StringBuilder).AppendValues(cats, nil)
	builder.Field(2).(*array.Int64Builder).AppendValues(value1, nil)
	builder.Field(3).(*array.Float64Builder).AppendValues(value2, nil)

	return builder.NewRecord()
}

func BenchmarkTransform(b *testing.B) {
	sizes := []int{smallSize, mediumSize, largeSize}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			p := New(zap.NewNop(), DefaultPaths(b.TempDir()), sample.NewSeeded(table.Pool, 1))
			rec := createBenchRecord(size)
			defer rec.Release()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				result, err := p.transform(rec)
				if err != nil {
					b.Fatal(err)
				}
				result.Release()
			}
		})
	}
}

func BenchmarkProcess(b *testing.B) {
	sizes := []int{smallSize, mediumSize}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			dir := b.TempDir()
			p := New(zap.NewNop(), DefaultPaths(dir), sample.NewSeeded(table.Pool, 1))

			rec := createBenchRecord(size)
			input := filepath.Join(dir, "bench_input.csv")
			if err := storage.NewStore(table.Pool, table.Schema).Save(input, rec); err != nil {
				b.Fatal(err)
			}
			rec.Release()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				result := p.Process(input)
				result.Release()
			}
		})
	}
}

func BenchmarkFilterValue1(b *testing.B) {
	sizes := []int{smallSize, mediumSize, largeSize}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			rec := createBenchRecord(size)
			defer rec.Release()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := filterValue1(rec); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
