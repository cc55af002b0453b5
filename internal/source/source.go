// Package source loads the line sequences handed to the matcher.
package source

import (
	"fmt"
	"os"

	"linetrack/internal/textutil"
)

// InputError reports a file that could not be read or decoded.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ReadLines reads path and returns its lines without terminators.
// Invalid UTF-8 is replaced rather than rejected.
func ReadLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	lines, err := textutil.Lines(b)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return lines, nil
}
