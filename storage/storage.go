// Package storage reads and writes winnow tables as CSV files on disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/winnow/table"
)

// Store wraps an allocator and schema to provide Save/Load functionality
// for CSV files with a header row.
type Store struct {
	mem    memory.Allocator
	schema *arrow.Schema
}

// NewStore creates a new Store reading tables with the given schema.
func NewStore(mem memory.Allocator, schema *arrow.Schema) *Store {
	return &Store{
		mem:    mem,
		schema: schema,
	}
}

// Save writes rec to path as CSV with a header row. The destination
// directory is created if it does not exist yet.
func (s *Store) Save(path string, rec arrow.Record) error {
	// 1. Make sure the destination directory exists.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}

	// 2. Open file for writing.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	// 3. Write the record through an Arrow CSV writer. The writer takes
	// its column layout from the record's own schema, which may carry
	// derived columns beyond the input schema.
	writer := csv.NewWriter(file, rec.Schema(),
		csv.WithHeader(true),
		csv.WithComma(','),
	)
	if err := writer.Write(rec); err != nil {
		return fmt.Errorf("failed to write record to CSV file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return nil
}

// Load reads the CSV file at path into a single record with the Store's
// schema. A file with a header but no data rows loads as a zero-row
// record. Cells that fail to parse under the schema are an error.
func (s *Store) Load(path string) (arrow.Record, error) {
	// 1. Open file for reading.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	// 2. Read every chunk through an Arrow CSV reader. Chunk size -1
	// asks for the whole file as a single record; collect whatever the
	// reader yields and normalize below.
	reader := csv.NewReader(file, s.schema,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(false, "", "NULL", "null"),
		csv.WithAllocator(s.mem),
	)
	defer reader.Release()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CSV file %q: %w", path, err)
	}

	// 3. Normalize the chunks into one record.
	return table.Concat(s.mem, s.schema, recs)
}
