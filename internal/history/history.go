// Package history persists submitted expressions in a bbolt file.
package history

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketExpr = "expr"

var ErrClosed = errors.New("history: closed")

// Entry is one stored expression.
type Entry struct {
	Seq  uint64
	Text string
}

type Store struct {
	mu sync.Mutex
	db *bolt.DB
}

// Open opens or creates the history file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketExpr))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) handle() (*bolt.DB, error) {
	if s == nil {
		return nil, ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Add appends text unless it is blank or repeats the newest entry.
// It returns the sequence number of the newest entry afterwards.
func (s *Store) Add(text string) (uint64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	text = strings.TrimSpace(text)
	var seq uint64
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketExpr))
		if k, v := b.Cursor().Last(); k != nil && string(v) == text {
			seq = unmarshalSeq(k)
			return nil
		}
		if text == "" {
			seq = b.Sequence()
			return nil
		}
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(text))
	})
	return seq, err
}

// Recent returns up to n entries, oldest first. n <= 0 returns everything.
func (s *Store) Recent(n int) ([]Entry, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	err = db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketExpr)).Cursor()
		for k, v := c.Last(); k != nil && (n <= 0 || len(entries) < n); k, v = c.Prev() {
			entries = append(entries, Entry{Seq: unmarshalSeq(k), Text: string(v)})
		}
		return nil
	})
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, err
}

// Texts is Recent without sequence numbers.
func (s *Store) Texts(n int) ([]string, error) {
	entries, err := s.Recent(n)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out, nil
}

// Trim deletes all but the newest keep entries.
func (s *Store) Trim(keep int) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketExpr))
		var stale [][]byte
		n := 0
		c := b.Cursor()
		for k, _ := c.Last(); k != nil; k, _ = c.Prev() {
			if n++; n > keep {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
