package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAssignsSequence(t *testing.T) {
	s := tempStore(t)

	for i, line := range []string{"echo one", "pwd", "echo two"} {
		seq, err := s.Add(line)
		require.NoError(t, err)
		assert.Equal(t, i+1, seq)
	}

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEntries(t *testing.T) {
	s := tempStore(t)
	lines := []string{"echo one", "pwd", "echo two", "type cat"}
	for _, line := range lines {
		_, err := s.Add(line)
		require.NoError(t, err)
	}

	t.Run("all", func(t *testing.T) {
		entries, err := s.Entries(0)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, Entry{Seq: 1, Text: "echo one"}, entries[0])
		assert.Equal(t, Entry{Seq: 4, Text: "type cat"}, entries[3])
	})

	t.Run("last two", func(t *testing.T) {
		entries, err := s.Entries(2)
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Seq: 3, Text: "echo two"},
			{Seq: 4, Text: "type cat"},
		}, entries)
	})

	t.Run("limit beyond count", func(t *testing.T) {
		entries, err := s.Entries(100)
		require.NoError(t, err)
		assert.Len(t, entries, 4)
	})
}

func TestEmptyStore(t *testing.T) {
	s := tempStore(t)

	entries, err := s.Entries(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEach(t *testing.T) {
	s := tempStore(t)
	_, err := s.Add("echo hello")
	require.NoError(t, err)
	_, err = s.Add("pwd")
	require.NoError(t, err)

	var got []string
	err = s.Each(1, func(seq int, text string) {
		got = append(got, text)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pwd"}, got)
}
