package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestParseBlankLines(t *testing.T) {
	for _, text := range []string{"", "   ", "\t", " \r\n "} {
		pipeline, err := Parse(text)
		assert.NoError(t, err)
		assert.Nil(t, pipeline)
	}
}

func TestParseBuiltins(t *testing.T) {
	cases := map[string]struct {
		text string
		want Command
	}{
		"echo no args": {
			text: "echo",
			want: &BuiltinCommand{Builtin: Echo{}},
		},
		"echo with args": {
			text: "echo hello 42 world",
			want: &BuiltinCommand{Builtin: Echo{Args: []string{"hello", "42", "world"}}},
		},
		"cd": {
			text: "cd /tmp",
			want: &BuiltinCommand{Builtin: Cd{Path: "/tmp"}},
		},
		"cd home": {
			text: "cd ~",
			want: &BuiltinCommand{Builtin: Cd{Path: "~"}},
		},
		"exit with code": {
			text: "exit 42",
			want: &BuiltinCommand{Builtin: Exit{Code: 42}},
		},
		"exit defaults to zero": {
			text: "exit",
			want: &BuiltinCommand{Builtin: Exit{Code: 0}},
		},
		"pwd": {
			text: "pwd",
			want: &BuiltinCommand{Builtin: Pwd{}},
		},
		"type": {
			text: "type echo",
			want: &BuiltinCommand{Builtin: Type{Target: "echo"}},
		},
		"history": {
			text: "history",
			want: &BuiltinCommand{Builtin: History{}},
		},
		"history with limit": {
			text: "history 5",
			want: &BuiltinCommand{Builtin: History{Limit: intPtr(5)}},
		},
		"echo with stdout redirect": {
			text: "echo hi > out.txt",
			want: &BuiltinCommand{
				Builtin:  Echo{Args: []string{"hi"}},
				Redirect: &Redirect{Stream: Stdout, Filename: "out.txt"},
			},
		},
		"echo with append redirect": {
			text: "echo hi >> out.txt",
			want: &BuiltinCommand{
				Builtin:  Echo{Args: []string{"hi"}},
				Redirect: &Redirect{Stream: Stdout, Filename: "out.txt", Append: true},
			},
		},
		"echo with explicit stdout descriptor": {
			text: "echo hi 1> out.txt",
			want: &BuiltinCommand{
				Builtin:  Echo{Args: []string{"hi"}},
				Redirect: &Redirect{Stream: Stdout, Filename: "out.txt"},
			},
		},
		"echo with stderr redirect": {
			text: "echo hi 2>> err.txt",
			want: &BuiltinCommand{
				Builtin:  Echo{Args: []string{"hi"}},
				Redirect: &Redirect{Stream: Stderr, Filename: "err.txt", Append: true},
			},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			pipeline, err := Parse(tc.text)
			require.NoError(t, err)
			require.NotNil(t, pipeline)
			require.Len(t, pipeline.Commands, 1)
			assert.Equal(t, tc.want, pipeline.Commands[0])
		})
	}
}

func TestParseExternal(t *testing.T) {
	pipeline, err := Parse("grep -v 2 input.txt 2> err.log")
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)

	assert.Equal(t, &ExternalCommand{
		Args:     []string{"grep", "-v", "2", "input.txt"},
		Redirect: &Redirect{Stream: Stderr, Filename: "err.log"},
	}, pipeline.Commands[0])
}

func TestParsePipelines(t *testing.T) {
	t.Run("two stages", func(t *testing.T) {
		pipeline, err := Parse("echo hello | cat")
		require.NoError(t, err)
		require.Len(t, pipeline.Commands, 2)

		assert.Equal(t, &BuiltinCommand{Builtin: Echo{Args: []string{"hello"}}}, pipeline.Commands[0])
		assert.Equal(t, &ExternalCommand{Args: []string{"cat"}}, pipeline.Commands[1])
	})

	t.Run("pipelines are unbounded", func(t *testing.T) {
		pipeline, err := Parse("cat f | grep x | sort | uniq")
		require.NoError(t, err)
		assert.Len(t, pipeline.Commands, 4)
	})

	t.Run("per stage redirects", func(t *testing.T) {
		pipeline, err := Parse("ls 2> err.log | wc -l > count.txt")
		require.NoError(t, err)
		require.Len(t, pipeline.Commands, 2)
		assert.Equal(t, &Redirect{Stream: Stderr, Filename: "err.log"}, pipeline.Commands[0].Redirection())
		assert.Equal(t, &Redirect{Stream: Stdout, Filename: "count.txt"}, pipeline.Commands[1].Redirection())
	})
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		text    string
		wantErr string
	}{
		"cd without path": {
			text:    "cd",
			wantErr: "expected word",
		},
		"type without target": {
			text:    "type",
			wantErr: "expected word",
		},
		"unrecognized file descriptor": {
			text:    "echo hi 3> f",
			wantErr: "unrecognized file descriptor 3",
		},
		"unrecognized append descriptor": {
			text:    "echo hi 42>> f",
			wantErr: "unrecognized file descriptor 42",
		},
		"redirect without filename": {
			text:    "echo hi >",
			wantErr: "expected word",
		},
		"trailing garbage": {
			text:    "pwd now",
			wantErr: "expected end of command but got `now`",
		},
		"leading pipe": {
			text:    "| cat",
			wantErr: "unexpected token",
		},
		"trailing pipe": {
			text:    "echo hi |",
			wantErr: "expected command after `|`",
		},
		"unclosed quote": {
			text:    "echo 'abc",
			wantErr: "unclosed single quote",
		},
		"second redirect clause": {
			text:    "echo hi > a > b",
			wantErr: "expected end of command",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			pipeline, err := Parse(tc.text)
			require.Error(t, err)
			assert.Nil(t, pipeline)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseQuotedBuiltinNameIsStillBuiltin(t *testing.T) {
	// Quoting resolves before dispatch, so 'echo' parses like echo.
	pipeline, err := Parse(`'echo' hi`)
	require.NoError(t, err)
	require.Len(t, pipeline.Commands, 1)
	assert.Equal(t, &BuiltinCommand{Builtin: Echo{Args: []string{"hi"}}}, pipeline.Commands[0])
}
