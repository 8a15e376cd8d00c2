package internal

import (
	"encoding/binary"
	"errors"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// Store is a small BoltDB-backed layer for run history. When the database
// file cannot be opened (read-only cache folder, concurrent daemon holding
// the lock) it degrades to an in-memory map so a CLI run still works.

var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB

	mu    sync.Mutex
	kv    map[string][]byte
	lists map[string][][]byte
}

// OpenStore opens the history database at path, falling back to memory on
// error.
func OpenStore(path string) *Store {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		UmmLog(WARN, "Store", "Could not open %s (%v), using in-memory store.", path, err)
		return &Store{kv: map[string][]byte{}, lists: map[string][][]byte{}}
	}
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func u64ToBytes(i uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return b[:]
}

// Put stores value under key in the named bucket.
func (s *Store) Put(bucket, key string, value []byte) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.kv[bucket+"/"+key] = append([]byte(nil), value...)
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

func (s *Store) Get(bucket, key string) ([]byte, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.kv[bucket+"/"+key]
		if !ok {
			return nil, ErrNotFound
		}
		return append([]byte(nil), v...), nil
	}
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Append adds value to the end of the named list bucket.
func (s *Store) Append(bucket string, value []byte) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lists[bucket] = append(s.lists[bucket], append([]byte(nil), value...))
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		seq, _ := b.NextSequence()
		return b.Put(u64ToBytes(seq), value)
	})
}

// Values returns all values stored under keys in the named bucket.
func (s *Store) Values(bucket string) ([][]byte, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		prefix := bucket + "/"
		var out [][]byte
		for k, v := range s.kv {
			if len(k) > len(prefix) && k[:len(prefix)] == prefix {
				out = append(out, append([]byte(nil), v...))
			}
		}
		return out, nil
	}
	return s.List(bucket)
}

// List returns all values of the named list bucket in insertion order.
func (s *Store) List(bucket string) ([][]byte, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([][]byte, 0, len(s.lists[bucket]))
		for _, v := range s.lists[bucket] {
			out = append(out, append([]byte(nil), v...))
		}
		return out, nil
	}
	var out [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out = append(out, append([]byte(nil), v...))
			return nil
		})
	})
	return out, err
}
