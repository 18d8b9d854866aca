package shell

import "fmt"

// TokenTag classifies a token produced by the Scanner.
type TokenTag int

const (
	// EndOfCommand marks the end of the command text. The Scanner returns
	// it forever once the input is exhausted.
	EndOfCommand TokenTag = iota
	// Word is a run of characters with quoting and escapes resolved.
	Word
	// Integer is an unsigned integer literal.
	Integer
	// Pipe is the `|` operator.
	Pipe
	// RedirectOut is the `>` operator.
	RedirectOut
	// RedirectOutAppend is the `>>` operator.
	RedirectOutAppend
	// RedirectOutFD is a descriptor-qualified `>`, e.g. `2>`.
	RedirectOutFD
	// RedirectOutAppendFD is a descriptor-qualified `>>`, e.g. `2>>`.
	RedirectOutAppendFD
)

func (t TokenTag) String() string {
	switch t {
	case EndOfCommand:
		return "end of command"
	case Word:
		return "word"
	case Integer:
		return "integer"
	case Pipe:
		return "|"
	case RedirectOut:
		return ">"
	case RedirectOutAppend:
		return ">>"
	case RedirectOutFD:
		return "n>"
	case RedirectOutAppendFD:
		return "n>>"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token is a single token of command text. Value is only meaningful for
// Integer and the descriptor-qualified redirect tags; Lexeme always holds
// the matched text (with quoting resolved for Word tokens).
type Token struct {
	Tag    TokenTag
	Lexeme string
	Value  uint32
}
