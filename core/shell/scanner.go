package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// wordState tracks the quoting context while scanning a word.
type wordState int

const (
	stateNormal wordState = iota
	stateInSingleQuote
	stateInDoubleQuote
	stateBackslash
	stateQuotedBackslash
)

// Scanner converts command text into a stream of tokens. It keeps a single
// rune cursor with one rune of lookahead, which is enough to tell `>` from
// `>>` and a plain integer from a descriptor-qualified redirect.
type Scanner struct {
	runes   []rune
	pos     int // index of the rune after next
	current rune
	next    rune

	hasCurrent bool
	hasNext    bool
}

// NewScanner creates a scanner over the given command text.
func NewScanner(text string) *Scanner {
	s := &Scanner{runes: []rune(text)}
	s.advance()
	s.advance()
	return s
}

func (s *Scanner) advance() {
	s.current, s.hasCurrent = s.next, s.hasNext
	if s.pos < len(s.runes) {
		s.next, s.hasNext = s.runes[s.pos], true
		s.pos++
	} else {
		s.next, s.hasNext = 0, false
	}
}

// Next returns the next token in the command text. Once the input is
// exhausted it returns an EndOfCommand token on every call.
func (s *Scanner) Next() (Token, error) {
	s.skipWhitespace()

	switch {
	case !s.hasCurrent:
		return Token{Tag: EndOfCommand}, nil

	case s.current == '|':
		s.advance()
		return Token{Tag: Pipe, Lexeme: "|"}, nil

	case s.current == '>' && s.hasNext && s.next == '>':
		s.advance()
		s.advance()
		return Token{Tag: RedirectOutAppend, Lexeme: ">>"}, nil

	case s.current == '>':
		s.advance()
		return Token{Tag: RedirectOut, Lexeme: ">"}, nil

	case isDigit(s.current):
		return s.integer()

	default:
		lexeme, err := s.word()
		if err != nil {
			return Token{}, err
		}
		return Token{Tag: Word, Lexeme: lexeme}, nil
	}
}

// word scans a (possibly quoted) word and returns its unescaped text.
func (s *Scanner) word() (string, error) {
	state := stateNormal
	var sb strings.Builder

	for {
		if !s.hasCurrent {
			switch state {
			case stateNormal:
				return sb.String(), nil
			case stateInSingleQuote:
				return "", fmt.Errorf("unclosed single quote")
			case stateInDoubleQuote, stateQuotedBackslash:
				return "", fmt.Errorf("unclosed double quote")
			default: // stateBackslash
				return "", fmt.Errorf("dangling backslash")
			}
		}

		c := s.current
		switch state {
		case stateNormal:
			switch {
			case c == '\\':
				state = stateBackslash
			case c == '\'':
				state = stateInSingleQuote
			case c == '"':
				state = stateInDoubleQuote
			case isWhitespace(c):
				return sb.String(), nil
			default:
				sb.WriteRune(c)
			}

		case stateInSingleQuote:
			// Everything is literal until the closing quote.
			if c == '\'' {
				state = stateNormal
			} else {
				sb.WriteRune(c)
			}

		case stateInDoubleQuote:
			switch c {
			case '"':
				state = stateNormal
			case '\\':
				state = stateQuotedBackslash
			default:
				sb.WriteRune(c)
			}

		case stateBackslash:
			// The next character is taken verbatim, whatever it is.
			sb.WriteRune(c)
			state = stateNormal

		case stateQuotedBackslash:
			// Inside double quotes a backslash only escapes `"` and `\`.
			if c != '"' && c != '\\' {
				sb.WriteRune('\\')
			}
			sb.WriteRune(c)
			state = stateInDoubleQuote
		}

		s.advance()
	}
}

// integer scans a digit run. If the run is immediately followed by `>` or
// `>>` the result is a descriptor-qualified redirect token carrying the
// value, otherwise a plain Integer token.
func (s *Scanner) integer() (Token, error) {
	var sb strings.Builder
	for s.hasCurrent && isDigit(s.current) {
		sb.WriteRune(s.current)
		s.advance()
	}

	lexeme := sb.String()
	value, err := strconv.ParseUint(lexeme, 10, 32)
	if err != nil {
		return Token{}, fmt.Errorf("couldn't parse `%s` as an unsigned 32 bit integer", lexeme)
	}

	switch {
	case s.hasCurrent && s.current == '>' && s.hasNext && s.next == '>':
		s.advance()
		s.advance()
		return Token{Tag: RedirectOutAppendFD, Lexeme: lexeme + ">>", Value: uint32(value)}, nil
	case s.hasCurrent && s.current == '>':
		s.advance()
		return Token{Tag: RedirectOutFD, Lexeme: lexeme + ">", Value: uint32(value)}, nil
	default:
		return Token{Tag: Integer, Lexeme: lexeme, Value: uint32(value)}, nil
	}
}

func (s *Scanner) skipWhitespace() {
	for s.hasCurrent && isWhitespace(s.current) {
		s.advance()
	}
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
