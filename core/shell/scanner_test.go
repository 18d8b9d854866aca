package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, text string) []Token {
	t.Helper()

	s := NewScanner(text)
	var tokens []Token
	for {
		tok, err := s.Next()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.Tag == EndOfCommand {
			return tokens
		}
	}
}

func TestScannerTokens(t *testing.T) {
	cases := map[string]struct {
		text string
		want []Token
	}{
		"empty": {
			text: "",
			want: []Token{{Tag: EndOfCommand}},
		},
		"whitespace only": {
			text: " \t\r\n ",
			want: []Token{{Tag: EndOfCommand}},
		},
		"single word": {
			text: "hello",
			want: []Token{{Tag: Word, Lexeme: "hello"}, {Tag: EndOfCommand}},
		},
		"words and integers": {
			text: "echo 42 world",
			want: []Token{
				{Tag: Word, Lexeme: "echo"},
				{Tag: Integer, Lexeme: "42", Value: 42},
				{Tag: Word, Lexeme: "world"},
				{Tag: EndOfCommand},
			},
		},
		"pipe": {
			text: "a | b",
			want: []Token{
				{Tag: Word, Lexeme: "a"},
				{Tag: Pipe, Lexeme: "|"},
				{Tag: Word, Lexeme: "b"},
				{Tag: EndOfCommand},
			},
		},
		"redirect out": {
			text: "> f",
			want: []Token{
				{Tag: RedirectOut, Lexeme: ">"},
				{Tag: Word, Lexeme: "f"},
				{Tag: EndOfCommand},
			},
		},
		"redirect append": {
			text: ">> f",
			want: []Token{
				{Tag: RedirectOutAppend, Lexeme: ">>"},
				{Tag: Word, Lexeme: "f"},
				{Tag: EndOfCommand},
			},
		},
		"fd redirect": {
			text: "2> log",
			want: []Token{
				{Tag: RedirectOutFD, Lexeme: "2>", Value: 2},
				{Tag: Word, Lexeme: "log"},
				{Tag: EndOfCommand},
			},
		},
		"fd append redirect": {
			text: "1>> log",
			want: []Token{
				{Tag: RedirectOutAppendFD, Lexeme: "1>>", Value: 1},
				{Tag: Word, Lexeme: "log"},
				{Tag: EndOfCommand},
			},
		},
		"digit run separated from redirect": {
			text: "12 > f",
			want: []Token{
				{Tag: Integer, Lexeme: "12", Value: 12},
				{Tag: RedirectOut, Lexeme: ">"},
				{Tag: Word, Lexeme: "f"},
				{Tag: EndOfCommand},
			},
		},
		"single quotes keep whitespace": {
			text: "'a  b'",
			want: []Token{{Tag: Word, Lexeme: "a  b"}, {Tag: EndOfCommand}},
		},
		"single quotes keep backslash": {
			text: `'a\nb'`,
			want: []Token{{Tag: Word, Lexeme: `a\nb`}, {Tag: EndOfCommand}},
		},
		"double quotes": {
			text: `"it's fine"`,
			want: []Token{{Tag: Word, Lexeme: "it's fine"}, {Tag: EndOfCommand}},
		},
		"escaped quote in double quotes": {
			text: `"say \"hi\""`,
			want: []Token{{Tag: Word, Lexeme: `say "hi"`}, {Tag: EndOfCommand}},
		},
		"escape without meaning in double quotes": {
			text: `"a\nb"`,
			want: []Token{{Tag: Word, Lexeme: `a\nb`}, {Tag: EndOfCommand}},
		},
		"escaped backslash in double quotes": {
			text: `"a\\b"`,
			want: []Token{{Tag: Word, Lexeme: `a\b`}, {Tag: EndOfCommand}},
		},
		"escaped space joins words": {
			text: `a\ b`,
			want: []Token{{Tag: Word, Lexeme: "a b"}, {Tag: EndOfCommand}},
		},
		"escaped quote outside quotes": {
			text: `\'`,
			want: []Token{{Tag: Word, Lexeme: "'"}, {Tag: EndOfCommand}},
		},
		"adjacent quoting styles merge": {
			text: `a'b'"c"`,
			want: []Token{{Tag: Word, Lexeme: "abc"}, {Tag: EndOfCommand}},
		},
		"word containing digits": {
			text: "file2name",
			want: []Token{{Tag: Word, Lexeme: "file2name"}, {Tag: EndOfCommand}},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got := scanAll(t, tc.text)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScannerErrors(t *testing.T) {
	cases := map[string]struct {
		text    string
		wantErr string
	}{
		"unclosed single quote": {
			text:    "echo 'abc",
			wantErr: "unclosed single quote",
		},
		"unclosed double quote": {
			text:    `echo "abc`,
			wantErr: "unclosed double quote",
		},
		"unclosed double quote after escape": {
			text:    `echo "abc\`,
			wantErr: "unclosed double quote",
		},
		"dangling backslash": {
			text:    `echo abc\`,
			wantErr: "dangling backslash",
		},
		"integer overflow": {
			text:    "99999999999999999999",
			wantErr: "couldn't parse `99999999999999999999` as an unsigned 32 bit integer",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s := NewScanner(tc.text)
			var err error
			for i := 0; i < 8; i++ {
				var tok Token
				tok, err = s.Next()
				if err != nil || tok.Tag == EndOfCommand {
					break
				}
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestScannerEndOfCommandIsSticky(t *testing.T) {
	s := NewScanner("one")

	tok, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, Word, tok.Tag)

	for i := 0; i < 3; i++ {
		tok, err = s.Next()
		require.NoError(t, err)
		assert.Equal(t, EndOfCommand, tok.Tag)
	}
}
