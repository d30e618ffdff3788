// Package pipeline implements the load, derive, filter, annotate pass
// that winnow runs over one table per invocation.
package pipeline

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/TFMV/winnow/sample"
	"github.com/TFMV/winnow/storage"
	"github.com/TFMV/winnow/table"
)

// ---------------------------------------------------------------------
// Paths and Tunables
// ---------------------------------------------------------------------

// Paths fixes the file locations used by one run.
type Paths struct {
	DataDir string
	Input   string
	Output  string
	LogFile string
}

// DefaultPaths returns the standard layout under root: a data directory
// holding the sample input, the processed output, and the run log.
func DefaultPaths(root string) Paths {
	dir := filepath.Join(root, "data")
	return Paths{
		DataDir: dir,
		Input:   filepath.Join(dir, "sample_input.csv"),
		Output:  filepath.Join(dir, "processed_output.csv"),
		LogFile: filepath.Join(dir, "data_processing.log"),
	}
}

const (
	// FilterThreshold drops rows whose value1 does not exceed it.
	FilterThreshold = 20

	// HighThreshold splits value1_type into High above it and Medium
	// at or below.
	HighThreshold = 35

	// epsilon keeps the value2/value1 ratio finite when value1 is zero.
	epsilon = 1e-6

	headRows = 5
)

// Labels written to the value1_type column.
const (
	LabelHigh   = "High"
	LabelMedium = "Medium"
)

// ---------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------

// Pipeline runs the batch pass: acquire a table, derive two columns,
// filter on value1, and annotate the survivors.
type Pipeline struct {
	log   *zap.Logger
	mem   memory.Allocator
	paths Paths
	gen   *sample.Generator
	store *storage.Store
}

// New creates a Pipeline reading and writing the locations in paths.
// The generator supplies sample data when the input file is missing.
func New(logger *zap.Logger, paths Paths, gen *sample.Generator) *Pipeline {
	return &Pipeline{
		log:   logger,
		mem:   table.Pool,
		paths: paths,
		gen:   gen,
		store: storage.NewStore(table.Pool, table.Schema),
	}
}

// Process runs one batch pass over the file at inputPath, or over the
// default input when inputPath is empty. It always returns a table the
// caller must release. Failures to acquire input do not escape: they
// are logged and collapse the result to a zero-row table, which is also
// what an input filtered down to nothing yields, so callers decide
// whether there is output with table.IsEmpty alone.
func (p *Pipeline) Process(inputPath string) arrow.Record {
	start := time.Now()
	defer func() {
		processLatency.Observe(time.Since(start).Seconds())
	}()

	path := inputPath
	if path == "" {
		path = p.paths.Input
	}

	rec, err := p.acquire(path)
	if err != nil {
		var empty *EmptyInputError
		if errors.As(err, &empty) {
			p.log.Error("Input file is empty, nothing to process", zap.String("path", empty.Path))
			runsTotal.WithLabelValues("empty_input").Inc()
		} else {
			p.log.Error("Failed to read input data", zap.String("path", path), zap.Error(err))
			runsTotal.WithLabelValues("read_error").Inc()
		}
		return table.Empty(p.mem)
	}

	rowsLoaded.Add(float64(rec.NumRows()))
	p.log.Info("Loaded input table",
		zap.Int64("rows", rec.NumRows()),
		zap.String("head", "\n"+table.Head(rec, headRows)))

	result, err := p.transform(rec)
	rec.Release()
	if err != nil {
		p.log.Error("Transformation failed", zap.Error(err))
		runsTotal.WithLabelValues("internal_error").Inc()
		return table.Empty(p.mem)
	}

	rowsKept.Add(float64(result.NumRows()))
	runsTotal.WithLabelValues("ok").Inc()
	p.log.Info("Processing complete",
		zap.Int64("rows", result.NumRows()),
		zap.String("head", "\n"+table.Head(result, headRows)))
	return result
}

// acquire resolves the table to process: the file at path when it
// exists, otherwise a freshly generated sample that is also saved to
// the default input path for later runs.
func (p *Pipeline) acquire(path string) (arrow.Record, error) {
	if err := os.MkdirAll(p.paths.DataDir, 0o755); err != nil {
		return nil, NewInputReadError(path, err)
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, NewInputReadError(path, err)
		}
		p.log.Warn("Input file not found, generating sample data", zap.String("path", path))
		rec := p.gen.Table()
		if err := p.store.Save(p.paths.Input, rec); err != nil {
			rec.Release()
			return nil, NewInputReadError(p.paths.Input, err)
		}
		p.log.Info("Sample data saved", zap.String("path", p.paths.Input), zap.Int64("rows", rec.NumRows()))
		return rec, nil
	}

	p.log.Info("Reading input data", zap.String("path", path))
	rec, err := p.store.Load(path)
	if err != nil {
		// A file with no content at all surfaces as bare EOF from the
		// CSV reader before any rows exist to parse.
		if errors.Is(err, io.EOF) {
			return nil, NewEmptyInputError(path)
		}
		return nil, NewInputReadError(path, err)
	}
	if table.IsEmpty(rec) {
		rec.Release()
		return nil, NewEmptyInputError(path)
	}
	return rec, nil
}

// ---------------------------------------------------------------------
// Transformations
// ---------------------------------------------------------------------

// transform applies the full pass to an acquired table: the two derived
// columns, the value1 filter, and the post-filter annotation, in that
// order. Each step yields a new record; intermediates are released here.
func (p *Pipeline) transform(rec arrow.Record) (arrow.Record, error) {
	p.log.Debug("Starting data transformations")

	plus10, err := p.addValue1Plus10(rec)
	if err != nil {
		return nil, err
	}
	defer plus10.Release()

	ratio, err := p.addValue2DivValue1(plus10)
	if err != nil {
		return nil, err
	}
	defer ratio.Release()

	keep, err := filterValue1(ratio)
	if err != nil {
		return nil, err
	}
	filtered, err := table.Select(p.mem, ratio, keep)
	if err != nil {
		return nil, err
	}
	defer filtered.Release()
	p.log.Debug("Filtered table on value1 threshold",
		zap.Int("threshold", FilterThreshold),
		zap.Uint64("rows_kept", keep.GetCardinality()))

	return p.addValue1Type(filtered)
}

// addValue1Plus10 appends the value1_plus_10 column: value1 shifted up
// by 10. Null value1 rows stay null.
func (p *Pipeline) addValue1Plus10(rec arrow.Record) (arrow.Record, error) {
	value1, err := table.Int64Col(rec, table.ColValue1)
	if err != nil {
		return nil, err
	}

	b := array.NewInt64Builder(p.mem)
	defer b.Release()
	for i := 0; i < value1.Len(); i++ {
		if value1.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(value1.Value(i) + 10)
	}
	arr := b.NewArray()
	defer arr.Release()

	p.log.Debug("Added value1_plus_10 column")
	return table.WithColumn(rec, arrow.Field{Name: table.ColValue1Plus10, Type: arrow.PrimitiveTypes.Int64}, arr), nil
}

// addValue2DivValue1 appends the value2_div_value1 column: value2 over
// value1, with epsilon added to the denominator so a zero value1 cannot
// divide by zero. Rows where either operand is null stay null.
func (p *Pipeline) addValue2DivValue1(rec arrow.Record) (arrow.Record, error) {
	value1, err := table.Int64Col(rec, table.ColValue1)
	if err != nil {
		return nil, err
	}
	value2, err := table.Float64Col(rec, table.ColValue2)
	if err != nil {
		return nil, err
	}

	b := array.NewFloat64Builder(p.mem)
	defer b.Release()
	for i := 0; i < value1.Len(); i++ {
		if value1.IsNull(i) || value2.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(value2.Value(i) / (float64(value1.Value(i)) + epsilon))
	}
	arr := b.NewArray()
	defer arr.Release()

	p.log.Debug("Added value2_div_value1 column")
	return table.WithColumn(rec, arrow.Field{Name: table.ColValue2DivValue1, Type: arrow.PrimitiveTypes.Float64}, arr), nil
}

// filterValue1 collects the positions of rows whose value1 exceeds
// FilterThreshold. Rows with a null value1 are dropped.
func filterValue1(rec arrow.Record) (*roaring.Bitmap, error) {
	value1, err := table.Int64Col(rec, table.ColValue1)
	if err != nil {
		return nil, err
	}

	keep := roaring.New()
	for i := 0; i < value1.Len(); i++ {
		if value1.IsNull(i) {
			continue
		}
		if value1.Value(i) > FilterThreshold {
			keep.Add(uint32(i))
		}
	}
	return keep, nil
}

// addValue1Type appends the value1_type column: High when value1 exceeds
// HighThreshold, Medium otherwise.
func (p *Pipeline) addValue1Type(rec arrow.Record) (arrow.Record, error) {
	value1, err := table.Int64Col(rec, table.ColValue1)
	if err != nil {
		return nil, err
	}

	b := array.NewStringBuilder(p.mem)
	defer b.Release()
	for i := 0; i < value1.Len(); i++ {
		if value1.IsNull(i) {
			b.AppendNull()
			continue
		}
		if value1.Value(i) > HighThreshold {
			b.Append(LabelHigh)
		} else {
			b.Append(LabelMedium)
		}
	}
	arr := b.NewArray()
	defer arr.Release()

	p.log.Debug("Added value1_type column")
	return table.WithColumn(rec, arrow.Field{Name: table.ColValue1Type, Type: arrow.BinaryTypes.String}, arr), nil
}
