package eval

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/afero"

	"github.com/gosh-shell/gosh/core/shell"
)

// Evaluator interprets parsed pipelines. Built-ins run in process against
// the configured sinks; external commands are spawned with their stdio wired
// by pipeline position and redirection.
type Evaluator struct {
	Sys    System
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// History backs the history built-in. May be nil.
	History HistorySource
}

// startedProc is an external stage that has been spawned and must be
// collected before Run returns.
type startedProc struct {
	cmd     *exec.Cmd
	closers []io.Closer // redirect targets and stdin pump, closed once the stage exits
}

func (p *startedProc) wait() error {
	err := p.cmd.Wait()
	for _, c := range p.closers {
		c.Close()
	}

	// A non-zero exit status is not a shell error.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// Run executes a pipeline to completion. Stage I/O is assigned left to
// right: the first stage reads the evaluator's stdin, the last writes its
// stdout, and interior links are OS pipes. A stage's own redirection
// supersedes the positional assignment for the stream it names. Every
// spawned stage is waited on, even when an earlier stage failed.
func (e *Evaluator) Run(pipeline *shell.Pipeline) error {
	if pipeline == nil || len(pipeline.Commands) == 0 {
		return nil
	}

	var (
		firstErr error
		procs    []*startedProc

		// Output of the stage just processed, feeding the next stage's
		// stdin: a pipe read end for an external stage, a captured buffer
		// for a built-in stage.
		prevPipe *os.File
		prevBuf  *bytes.Buffer
	)
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for i, cmd := range pipeline.Commands {
		first := i == 0
		last := i == len(pipeline.Commands)-1

		switch c := cmd.(type) {
		case *shell.BuiltinCommand:
			// Built-ins never read the previous stage's output. Closing the
			// read end lets an upstream writer terminate instead of filling
			// the pipe.
			if prevPipe != nil {
				prevPipe.Close()
				prevPipe = nil
			}
			prevBuf = nil

			var buf *bytes.Buffer
			stdout, stderr := e.Stdout, e.Stderr
			if !last {
				buf = &bytes.Buffer{}
				stdout = buf
			}

			if r := c.Redirect; r != nil {
				f, err := openRedirectTarget(e.Sys, r)
				if err != nil {
					record(err)
					prevBuf = buf
					continue
				}
				if r.Stream == shell.Stdout {
					stdout = f
				} else {
					stderr = f
				}
				err = e.runBuiltin(c.Builtin, stdout, stderr)
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				record(err)
			} else {
				record(e.runBuiltin(c.Builtin, stdout, stderr))
			}
			prevBuf = buf

		case *shell.ExternalCommand:
			proc, nextPipe, err := e.startExternal(c, first, last, prevPipe, prevBuf)
			prevPipe, prevBuf = nextPipe, nil
			if err != nil {
				record(err)
				continue
			}
			procs = append(procs, proc)
		}
	}

	// Leftover read end from a final stage that never got consumed.
	if prevPipe != nil {
		prevPipe.Close()
	}

	// Collect all stages before returning to avoid zombies.
	for _, p := range procs {
		record(p.wait())
	}

	return firstErr
}

// startExternal spawns one external stage. It returns the read end of the
// stage's stdout pipe when the stage is not last, so the caller can hand it
// to the following stage. On lookup or spawn failure the stage contributes
// nothing: any returned pipe already sees EOF.
func (e *Evaluator) startExternal(c *shell.ExternalCommand, first, last bool, prevPipe *os.File, prevBuf *bytes.Buffer) (*startedProc, *os.File, error) {
	name := c.Args[0]

	path, err := LookPath(e.Sys, name)
	if err != nil {
		if prevPipe != nil {
			prevPipe.Close()
		}
		return nil, nil, fmt.Errorf("%s: command not found", name)
	}

	cmd := exec.Command(path)
	cmd.Args = c.Args
	cmd.Env = e.Sys.Environ()
	// Run in the System's directory, which for a session-scoped System can
	// differ from the process's.
	if wd, wdErr := e.Sys.Getwd(); wdErr == nil {
		cmd.Dir = wd
	}

	// Parent-side descriptors to close once the child holds its copies.
	var postStart []io.Closer
	// The write end a captured built-in buffer is drained into after start.
	var feedWrite *os.File
	// The write end the evaluator's own stdin is copied into after start.
	var pumpWrite *os.File

	switch {
	case prevPipe != nil:
		cmd.Stdin = prevPipe
		postStart = append(postStart, prevPipe)
	case prevBuf != nil:
		r, w, pipeErr := os.Pipe()
		if pipeErr != nil {
			return nil, nil, pipeErr
		}
		cmd.Stdin = r
		postStart = append(postStart, r)
		feedWrite = w
	case first && e.Stdin != nil:
		if f, ok := e.Stdin.(*os.File); ok {
			cmd.Stdin = f
		} else {
			// Handing a non-file reader straight to exec would make Wait
			// block on an exec-owned copy goroutine until the reader's next
			// Read returns, long after the child has exited. Pump it through
			// a pipe we own instead, abandoned once the stage is collected.
			r, w, pipeErr := os.Pipe()
			if pipeErr != nil {
				return nil, nil, pipeErr
			}
			cmd.Stdin = r
			postStart = append(postStart, r)
			pumpWrite = w
		}
	default:
		// Upstream produced nothing; the stage reads EOF immediately.
	}

	// abort releases everything opened so far on a failed start.
	abort := func() {
		closeAll(postStart)
		if feedWrite != nil {
			feedWrite.Close()
		}
		if pumpWrite != nil {
			pumpWrite.Close()
		}
	}

	var nextRead *os.File
	if last {
		cmd.Stdout = e.Stdout
	} else {
		r, w, pipeErr := os.Pipe()
		if pipeErr != nil {
			abort()
			return nil, nil, pipeErr
		}
		cmd.Stdout = w
		nextRead = r
		postStart = append(postStart, w)
	}
	cmd.Stderr = e.Stderr

	proc := &startedProc{cmd: cmd}
	if r := c.Redirect; r != nil {
		f, openErr := openRedirectTarget(e.Sys, r)
		if openErr != nil {
			abort()
			return nil, nextRead, openErr
		}
		// The file supersedes whatever stdio the pipeline position assigned
		// for this stream; the other stream is unaffected.
		if r.Stream == shell.Stdout {
			cmd.Stdout = f
		} else {
			cmd.Stderr = f
		}
		proc.closers = append(proc.closers, f)
	}

	if err := cmd.Start(); err != nil {
		abort()
		for _, f := range proc.closers {
			f.Close()
		}
		return nil, nextRead, fmt.Errorf("%s: %v", name, err)
	}

	// The child owns its descriptor copies now; drop ours so pipe EOFs
	// propagate.
	closeAll(postStart)

	// Drain a preceding built-in's captured output into the stage's stdin,
	// then close the write end so the stage sees EOF. This happens before
	// the evaluator moves on, so handoff is synchronous. Write errors are
	// ignored: the stage may legitimately exit without reading.
	if feedWrite != nil {
		_, _ = feedWrite.Write(prevBuf.Bytes())
		feedWrite.Close()
	}

	// Copy the evaluator's stdin into the stage in the background. The write
	// end is also closed when the stage is collected, so Wait never depends
	// on the reader producing another byte.
	if pumpWrite != nil {
		in, w := e.Stdin, pumpWrite
		go func() {
			_, _ = io.Copy(w, in)
			w.Close()
		}()
		proc.closers = append(proc.closers, pumpWrite)
	}

	return proc, nextRead, nil
}

// openRedirectTarget opens a redirect's target file, anchoring relative
// filenames at the System's working directory.
func openRedirectTarget(sys System, r *shell.Redirect) (afero.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if r.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return sys.Fs().OpenFile(resolvePath(sys, r.Filename), flags, 0644)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
