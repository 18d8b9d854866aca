package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)
	r.Now = func() time.Time {
		return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
	}

	session := r.NewSession("s1")
	require.NoError(t, session.Record(Entry{Event: EventSessionStart, User: "root"}))
	require.NoError(t, session.Record(Entry{Event: EventCommand, Line: "echo hi"}))
	require.NoError(t, session.Record(Entry{Event: EventParseError, Line: "echo 'oops", Error: "unclosed single quote"}))

	var got []Entry
	require.NoError(t, ReadEntries(&buf, func(e Entry) {
		got = append(got, e)
	}))

	require.Len(t, got, 3)
	assert.Equal(t, EventSessionStart, got[0].Event)
	assert.Equal(t, "s1", got[0].Session)
	assert.Equal(t, "echo hi", got[1].Line)
	assert.Equal(t, "unclosed single quote", got[2].Error)
	for _, e := range got {
		assert.Equal(t, 2006, e.Time.Year())
	}
}

func TestRecorderOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	require.NoError(t, r.Record(Entry{Event: EventCommand, Line: "pwd"}))
	require.NoError(t, r.Record(Entry{Event: EventSessionEnd}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}
