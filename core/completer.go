package core

import (
	"sort"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/anmitsu/go-shlex"

	"github.com/gosh-shell/gosh/core/eval"
	"github.com/gosh-shell/gosh/core/shell"
)

// completer offers command name completions for the first word of a line.
// Candidates are the shell built-ins plus every executable on the search
// path.
type completer struct {
	sys eval.System
}

var _ readline.AutoCompleter = (*completer)(nil)

// NewCompleter creates an AutoCompleter backed by sys's search path.
func NewCompleter(sys eval.System) readline.AutoCompleter {
	return &completer{sys: sys}
}

// Do implements readline.AutoCompleter. It returns the suffixes that could
// complete the word under the cursor and the length of the prefix they
// extend.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])

	if !inCommandPosition(prefix) {
		return nil, 0
	}

	word := strings.TrimLeft(prefix, " \t")

	var out [][]rune
	for _, name := range c.candidates() {
		if strings.HasPrefix(name, word) {
			out = append(out, []rune(name[len(word):]+" "))
		}
	}
	return out, len(word)
}

// inCommandPosition reports whether the cursor sits inside the first word of
// the line. Lines with an open quote or any completed word before the cursor
// get no completions.
func inCommandPosition(prefix string) bool {
	words, err := shlex.Split(prefix, true)
	if err != nil {
		return false
	}
	switch len(words) {
	case 0:
		return true
	case 1:
		// Trailing whitespace means the first word is finished and the
		// cursor is on an argument.
		return !strings.ContainsAny(prefix[len(prefix)-1:], " \t")
	default:
		return false
	}
}

func (c *completer) candidates() []string {
	names := append(shell.BuiltinNames(), eval.Executables(c.sys)...)
	sort.Strings(names)
	return names
}
