// Command linetrack maps the lines of an old file version to the lines of a
// new one, tracking reordered, reworded and split lines that a plain diff
// reports as deletions and additions.
//
// Subcommands:
//   - map OLD NEW      : fuzzy line mapping (the default workflow)
//   - opcodes OLD NEW  : exact LCS alignment as "tag i1 i2 j1 j2" lines
//   - diff OLD NEW     : unified diff of the two versions
//   - best OLD NEW     : single-pass best-line baseline mapping
//   - tree OLD NEW     : map every file of two directory trees
//
// Configuration is resolved from defaults, --config (YAML or TOML), a .env
// file, LINETRACK_* environment variables and finally explicit flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code: 0 on success, 1
// on runtime failures and 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}

// usageError marks mistakes in the command line itself.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
