package eval

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// System provides the process-wide state the evaluator reads and mutates:
// the working directory, the command search path, the home directory and
// the environment. It exists so tests can run the evaluator against an
// in-memory filesystem and a fake process boundary.
type System interface {
	Getwd() (string, error)
	Chdir(path string) error
	UserHomeDir() (string, error)

	// Path returns the directories searched for executables, in order.
	Path() []string

	// Fs is the filesystem used for redirection targets and executable
	// lookup.
	Fs() afero.Fs

	Environ() []string

	// Exit terminates the process with the given code. It does not return.
	Exit(code int)
}

// RealSystem is the System backed by the host OS.
type RealSystem struct {
	// PathOverride replaces the PATH environment variable when non-nil.
	PathOverride []string

	fs afero.Fs
}

var _ System = (*RealSystem)(nil)

// NewRealSystem creates a System backed by the host OS.
func NewRealSystem() *RealSystem {
	return &RealSystem{fs: afero.NewOsFs()}
}

func (s *RealSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (s *RealSystem) Chdir(path string) error {
	return os.Chdir(path)
}

func (s *RealSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (s *RealSystem) Path() []string {
	if s.PathOverride != nil {
		return s.PathOverride
	}
	return filepath.SplitList(os.Getenv("PATH"))
}

func (s *RealSystem) Fs() afero.Fs {
	return s.fs
}

func (s *RealSystem) Environ() []string {
	return os.Environ()
}

func (s *RealSystem) Exit(code int) {
	os.Exit(code)
}
