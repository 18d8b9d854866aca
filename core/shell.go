package core

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/eval"
	"github.com/gosh-shell/gosh/core/history"
	"github.com/gosh-shell/gosh/core/logger"
	"github.com/gosh-shell/gosh/core/shell"
)

// historySeedLimit caps how many stored entries are loaded into the line
// editor at startup.
const historySeedLimit = 500

// Options wires a Shell to its collaborators.
type Options struct {
	Config *config.Configuration
	Sys    eval.System

	// History is the persistent command log. May be nil.
	History *history.Store
	// Events records session events. May be nil.
	Events *logger.SessionRecorder

	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer

	IsTerminal bool
	// Width reports the terminal width. May be nil.
	Width func() int

	User string
	Host string
	// Remote is the peer address for served sessions. Empty for local shells.
	Remote string

	// ExitRequested reports an exit code captured by a session-scoped
	// System whose Exit does not terminate the process. May be nil.
	ExitRequested func() (int, bool)
}

// Shell is an interactive read-eval loop over a line editor.
type Shell struct {
	opts      Options
	Readline  *readline.Instance
	evaluator *eval.Evaluator

	errColor    *color.Color
	promptColor *color.Color
}

// NewShell creates a shell and its line editor.
func NewShell(opts Options) (*Shell, error) {
	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(opts.Stdin),
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		AutoComplete: NewCompleter(opts.Sys),
		FuncIsTerminal: func() bool {
			return opts.IsTerminal
		},
	}
	if opts.Width != nil {
		cfg.FuncGetWidth = opts.Width
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	s := &Shell{
		opts:     opts,
		Readline: rl,
		evaluator: &eval.Evaluator{
			Sys:    opts.Sys,
			Stdin:  opts.Stdin,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		},
		errColor:    color.New(color.FgRed),
		promptColor: color.New(color.FgGreen, color.Bold),
	}
	if opts.IsTerminal {
		s.errColor.EnableColor()
		s.promptColor.EnableColor()
	} else {
		s.errColor.DisableColor()
		s.promptColor.DisableColor()
	}

	if opts.History != nil {
		s.evaluator.History = opts.History
		s.seedEditorHistory()
	}

	return s, nil
}

// seedEditorHistory loads stored lines into the editor so up-arrow works
// across sessions.
func (s *Shell) seedEditorHistory() {
	entries, err := s.opts.History.Entries(historySeedLimit)
	if err != nil {
		log.Printf("couldn't seed history: %v", err)
		return
	}
	for _, e := range entries {
		_ = s.Readline.SaveHistory(e.Text)
	}
}

// Prompt renders the configured prompt template against the current state.
func (s *Shell) Prompt() string {
	prompt := s.opts.Config.Prompt
	if prompt == "" {
		prompt = config.DefaultPrompt
	}

	prompt = strings.ReplaceAll(prompt, `\u`, s.opts.User)
	prompt = strings.ReplaceAll(prompt, `\h`, s.opts.Host)

	pwd, _ := s.opts.Sys.Getwd()
	if home, err := s.opts.Sys.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if s.opts.User == "root" {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return s.promptColor.Sprint(prompt)
}

// Run reads and evaluates lines until the input closes or an exit is
// requested. It returns the shell's exit code; with a process-backed System
// the exit built-in terminates the process before Run can return.
func (s *Shell) Run() int {
	s.record(logger.Entry{Event: logger.EventSessionStart, User: s.opts.User, Remote: s.opts.Remote})
	defer s.record(logger.Entry{Event: logger.EventSessionEnd})

	for {
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue // Drop the partial line.

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		default:
			s.Eval(line)
			if s.opts.ExitRequested != nil {
				if code, ok := s.opts.ExitRequested(); ok {
					return code
				}
			}
		}
	}
}

// Eval parses and evaluates one line, reporting line-scoped errors to
// stderr and moving on.
func (s *Shell) Eval(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	_ = s.Readline.SaveHistory(line)
	if s.opts.History != nil {
		if _, err := s.opts.History.Add(line); err != nil {
			log.Printf("couldn't record history: %v", err)
		}
	}

	pipeline, err := shell.Parse(line)
	if err != nil {
		s.record(logger.Entry{Event: logger.EventParseError, Line: line, Error: err.Error()})
		s.reportError(err)
		return
	}
	if pipeline == nil {
		return
	}

	s.record(logger.Entry{Event: logger.EventCommand, Line: line})
	if err := s.evaluator.Run(pipeline); err != nil {
		s.record(logger.Entry{Event: logger.EventEvalError, Line: line, Error: err.Error()})
		s.reportError(err)
	}
}

func (s *Shell) reportError(err error) {
	fmt.Fprintln(s.opts.Stderr, s.errColor.Sprint(err.Error()))
}

func (s *Shell) record(entry logger.Entry) {
	if s.opts.Events == nil {
		return
	}
	if err := s.opts.Events.Record(entry); err != nil {
		log.Printf("couldn't record event: %v", err)
	}
}

// Close releases the line editor.
func (s *Shell) Close() error {
	return s.Readline.Close()
}
