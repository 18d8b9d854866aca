package eval

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(vfs afero.Fs, file string) error {
	d, err := vfs.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// resolvePath anchors a relative path at the System's working directory,
// which with a session-scoped System can differ from the process's.
func resolvePath(sys System, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := sys.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(wd, path)
}

// LookPath searches for an executable named file in the directories listed
// by sys.Path. If file contains a slash, it is tried directly and the path
// list is not consulted. Relative names and path entries are resolved
// against sys.Getwd, so the result is absolute whenever the working
// directory is known.
func LookPath(sys System, file string) (string, error) {
	if strings.Contains(file, "/") {
		path := resolvePath(sys, file)
		if err := findExecutable(sys.Fs(), path); err != nil {
			return "", err
		}
		return path, nil
	}
	for _, dir := range sys.Path() {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := resolvePath(sys, filepath.Join(dir, file))
		if err := findExecutable(sys.Fs(), path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Executables lists the names of all executable files in the directories
// listed by sys.Path. The completer uses this together with the built-in
// names.
func Executables(sys System) []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range sys.Path() {
		entries, err := afero.ReadDir(sys.Fs(), resolvePath(sys, dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.Mode().IsDir() || entry.Mode()&0111 == 0 {
				continue
			}
			if !seen[entry.Name()] {
				seen[entry.Name()] = true
				names = append(names, entry.Name())
			}
		}
	}
	return names
}
