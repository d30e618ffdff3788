package pipeline

import "fmt"

// EmptyInputError reports an input source that parsed to no rows or no
// columns. Process treats it as "nothing to process" rather than a
// failure of the run.
type EmptyInputError struct {
	Path string
}

// NewEmptyInputError creates a new EmptyInputError for the given path.
func NewEmptyInputError(path string) *EmptyInputError {
	return &EmptyInputError{Path: path}
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("input file %q has no data", e.Path)
}

// InputReadError reports any other failure to acquire input: an
// unreadable path, malformed CSV content, or a failed sample write.
type InputReadError struct {
	error
	Path string
}

// NewInputReadError creates a new InputReadError wrapping err.
func NewInputReadError(path string, err error) *InputReadError {
	return &InputReadError{err, path}
}

func (e *InputReadError) Error() string {
	return "input read error: " + e.error.Error()
}

func (e *InputReadError) Unwrap() error {
	return e.error
}
