package eval

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/gosh-shell/gosh/core/shell"
)

// HistorySource lists previously executed command lines. It is implemented
// by the history store; the evaluator only needs to iterate entries.
type HistorySource interface {
	// Each calls f for each entry in order, oldest first, with the entry's
	// 1-based sequence number. A limit <= 0 visits every entry, otherwise
	// only the last limit entries are visited.
	Each(limit int, f func(seq int, text string)) error
}

// runBuiltin executes a built-in against the given output sinks. Soft
// conditions (a `type` miss) are written to stderr and return nil; real
// failures return an error for the caller to report.
func (e *Evaluator) runBuiltin(b shell.Builtin, stdout, stderr io.Writer) error {
	switch b := b.(type) {
	case shell.Echo:
		fmt.Fprintln(stdout, strings.Join(b.Args, " "))
		return nil

	case shell.Cd:
		return e.cd(b.Path)

	case shell.Exit:
		// Unconditional process exit, never returns under a real System.
		e.Sys.Exit(b.Code)
		return nil

	case shell.Pwd:
		wd, err := e.Sys.Getwd()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, wd)
		return nil

	case shell.Type:
		return e.typeBuiltin(b.Target, stdout, stderr)

	case shell.History:
		limit := 0
		if b.Limit != nil {
			limit = *b.Limit
		}
		return e.history(limit, stdout)

	default:
		return fmt.Errorf("unknown builtin `%s`", b.Name())
	}
}

func (e *Evaluator) cd(path string) error {
	if path == "~" {
		home, err := e.Sys.UserHomeDir()
		if err != nil {
			return errors.New("cd: Home directory is unknown")
		}
		path = home
	}

	if err := e.Sys.Chdir(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cd: %s: No such file or directory", path)
		}
		return err
	}
	return nil
}

func (e *Evaluator) typeBuiltin(target string, stdout, stderr io.Writer) error {
	if shell.IsBuiltinName(target) {
		fmt.Fprintf(stdout, "%s is a shell builtin\n", target)
		return nil
	}

	path, err := LookPath(e.Sys, target)
	if err != nil {
		// A lookup miss is expected output, not a failure.
		fmt.Fprintf(stderr, "%s: not found\n", target)
		return nil
	}

	fmt.Fprintf(stdout, "%s is %s\n", target, path)
	return nil
}

func (e *Evaluator) history(limit int, stdout io.Writer) error {
	if e.History == nil {
		return errors.New("history: history is unavailable")
	}

	return e.History.Each(limit, func(seq int, text string) {
		fmt.Fprintf(stdout, "\t%d\t%s\n", seq, text)
	})
}
