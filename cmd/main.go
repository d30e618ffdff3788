package main

import (
	"fmt"
	"os"

	"github.com/docopt/docopt.go"
	"go.uber.org/zap"

	"github.com/TFMV/winnow/logging"
	"github.com/TFMV/winnow/pipeline"
	"github.com/TFMV/winnow/sample"
	"github.com/TFMV/winnow/storage"
	"github.com/TFMV/winnow/table"
)

func main() {
	usage := `Winnow Batch Table Processor.

Usage:
  winnow run [--input=<path>]
  winnow (-h | --help)
  winnow --version

Options:
  -h --help       Show this screen.
  --version       Show version.
  --input=<path>  CSV file to process instead of the default input.
`
	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		os.Exit(1)
	}
	if v, _ := arguments.Bool("--version"); v {
		fmt.Println("Winnow version 1.0.0")
		os.Exit(0)
	}
	input, err := arguments.String("--input")
	if err != nil {
		input = ""
	}

	paths := pipeline.DefaultPaths(".")

	// Initialize the two-destination logger before anything else so
	// every later failure has somewhere to go.
	logger, closeLogger, err := logging.New(paths.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	run(logger.Named("winnow"), paths, input)
}

// run executes one batch pass and saves the result. A panic escaping the
// pipeline is logged at the highest severity and swallowed here, so the
// process still finishes its shutdown path and exits zero.
func run(log *zap.Logger, paths pipeline.Paths, input string) {
	defer func() {
		if r := recover(); r != nil {
			log.DPanic("Unhandled error during run", zap.Any("error", r), zap.Stack("stack"))
		}
		log.Info("Run finished")
	}()

	log.Info("Run started")

	p := pipeline.New(log, paths, sample.New(table.Pool))
	result := p.Process(input)
	defer result.Release()

	if table.IsEmpty(result) {
		log.Info("No data to save after processing")
		return
	}

	store := storage.NewStore(table.Pool, table.Schema)
	if err := store.Save(paths.Output, result); err != nil {
		log.DPanic("Failed to save processed output", zap.Error(err), zap.Stack("stack"))
		return
	}
	log.Info("Processed data saved", zap.String("path", paths.Output), zap.Int64("rows", result.NumRows()))
}
