package core

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/afero"

	"github.com/gosh-shell/gosh/core/eval"
)

// sessionSystem is a System for a served shell session. It keeps its own
// working directory so concurrent sessions don't fight over the process's,
// and turns exit into a recorded request instead of killing the server.
type sessionSystem struct {
	fs   afero.Fs
	path []string

	mu       sync.Mutex
	cwd      string
	exited   bool
	exitCode int
}

var _ eval.System = (*sessionSystem)(nil)

// newSessionSystem creates a session System rooted at the process's working
// directory. An empty path falls back to the PATH environment variable.
func newSessionSystem(path []string) (*sessionSystem, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		path = filepath.SplitList(os.Getenv("PATH"))
	}
	return &sessionSystem{
		fs:   afero.NewOsFs(),
		path: path,
		cwd:  cwd,
	}, nil
}

func (s *sessionSystem) Getwd() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd, nil
}

func (s *sessionSystem) Chdir(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cwd, path)
	}
	path = filepath.Clean(path)

	info, err := s.fs.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: path, Err: syscall.ENOTDIR}
	}

	s.cwd = path
	return nil
}

func (s *sessionSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (s *sessionSystem) Path() []string {
	return s.path
}

func (s *sessionSystem) Fs() afero.Fs {
	return s.fs
}

func (s *sessionSystem) Environ() []string {
	return os.Environ()
}

// Exit records the requested code; the shell loop notices it and ends the
// session.
func (s *sessionSystem) Exit(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exited = true
	s.exitCode = code
}

// ExitRequested reports whether Exit has been called and with what code.
func (s *sessionSystem) ExitRequested() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode, s.exited
}
