// Package history persists the shell's command history in a bolt database.
// Entries are append only and keyed by a big-endian sequence number so a
// cursor walks them in execution order.
package history

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketCmd = "cmd"

// Entry is one remembered command line.
type Entry struct {
	// Seq is the entry's 1-based sequence number.
	Seq int
	// Text is the command line exactly as typed.
	Text string
}

// Store is a bolt-backed command history log.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add appends a command line and returns its sequence number.
func (s *Store) Add(text string) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(text))
	})
	return int(seq), err
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketCmd)).Stats().KeyN
		return nil
	})
	return n, err
}

// Entries returns stored entries in order, oldest first. A limit <= 0
// returns everything; otherwise only the last limit entries are returned
// (all of them when limit exceeds the count).
func (s *Store) Entries(limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))

		skip := 0
		if limit > 0 {
			if n := b.Stats().KeyN; n > limit {
				skip = n - limit
			}
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if skip > 0 {
				skip--
				continue
			}
			entries = append(entries, Entry{Seq: int(unmarshalSeq(k)), Text: string(v)})
		}
		return nil
	})
	return entries, err
}

// Each calls f for each entry in order, oldest first. A limit <= 0 visits
// every entry, otherwise only the last limit entries. It implements the
// evaluator's history source.
func (s *Store) Each(limit int, f func(seq int, text string)) error {
	entries, err := s.Entries(limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		f(e.Seq, e.Text)
	}
	return nil
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
