package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TFMV/winnow/pipeline"
	"github.com/TFMV/winnow/storage"
	"github.com/TFMV/winnow/table"
)

// outputSchema mirrors the columns Save writes after a full pass.
var outputSchema = arrow.NewSchema([]arrow.Field{
	{Name: table.ColID, Type: arrow.PrimitiveTypes.Int64},
	{Name: table.ColCategory, Type: arrow.BinaryTypes.String},
	{Name: table.ColValue1, Type: arrow.PrimitiveTypes.Int64},
	{Name: table.ColValue2, Type: arrow.PrimitiveTypes.Float64},
	{Name: table.ColValue1Plus10, Type: arrow.PrimitiveTypes.Int64},
	{Name: table.ColValue2DivValue1, Type: arrow.PrimitiveTypes.Float64},
	{Name: table.ColValue1Type, Type: arrow.BinaryTypes.String},
}, nil)

func TestRunWithFixtureInput(t *testing.T) {
	t.Parallel()

	paths := pipeline.DefaultPaths(t.TempDir())
	input := filepath.Join(paths.DataDir, "fixture.csv")
	require.NoError(t, os.MkdirAll(paths.DataDir, 0o755))
	require.NoError(t, os.WriteFile(input, []byte(
		"id,category,value1,value2\n"+
			"1,A,15,10.5\n"+
			"2,B,25,20.1\n"+
			"3,A,35,30.2\n"+
			"4,C,45,40.8\n"+
			"5,B,10,50.0\n"), 0o644))

	run(zap.NewNop(), paths, input)

	out, err := storage.NewStore(table.Pool, outputSchema).Load(paths.Output)
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, int64(3), out.NumRows())
	ids := out.Column(0).(*array.Int64)
	labels := out.Column(6).(*array.String)
	assert.Equal(t, int64(2), ids.Value(0))
	assert.Equal(t, int64(4), ids.Value(2))
	assert.Equal(t, "Medium", labels.Value(0))
	assert.Equal(t, "High", labels.Value(2))
}

func TestRunMissingInputCreatesSample(t *testing.T) {
	t.Parallel()

	paths := pipeline.DefaultPaths(t.TempDir())
	run(zap.NewNop(), paths, "")

	_, err := os.Stat(paths.Input)
	assert.NoError(t, err, "Expected a sample input to be generated")
}

func TestRunEmptyInputWritesNoOutput(t *testing.T) {
	t.Parallel()

	paths := pipeline.DefaultPaths(t.TempDir())
	require.NoError(t, os.MkdirAll(paths.DataDir, 0o755))
	require.NoError(t, os.WriteFile(paths.Input, nil, 0o644))

	run(zap.NewNop(), paths, "")

	_, err := os.Stat(paths.Output)
	assert.True(t, os.IsNotExist(err), "Expected no output file for empty input")
}

func TestRunTwiceProducesIdenticalOutput(t *testing.T) {
	t.Parallel()

	paths := pipeline.DefaultPaths(t.TempDir())
	require.NoError(t, os.MkdirAll(paths.DataDir, 0o755))
	require.NoError(t, os.WriteFile(paths.Input, []byte(
		"id,category,value1,value2\n"+
			"1,A,15,10.5\n"+
			"2,B,25,20.1\n"+
			"3,A,35,30.2\n"), 0o644))

	run(zap.NewNop(), paths, "")
	first, err := os.ReadFile(paths.Output)
	require.NoError(t, err)

	run(zap.NewNop(), paths, "")
	second, err := os.ReadFile(paths.Output)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
