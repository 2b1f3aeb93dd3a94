package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/draftnight/draft-backend/internal/store"
)

var snapshotBucket = []byte("snapshot")
var eventBucket = []byte("events")
var snapshotKey = []byte("current")

// Store keeps the whole draft snapshot as a single JSON value in a bbolt
// file, plus an append-only event log bucket keyed by sequence number.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(snap store.Snapshot) error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint

	b, err := tx.CreateBucketIfNotExists(snapshotBucket)
	if err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}

	bytes, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := b.Put(snapshotKey, bytes); err != nil {
		return fmt.Errorf("put to bucket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) Load() (store.Snapshot, error) {
	var snap store.Snapshot

	if err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(snapshotBucket)
		if b == nil {
			return store.ErrNotFound
		}
		v := b.Get(snapshotKey)
		if v == nil {
			return store.ErrNotFound
		}
		if err := json.Unmarshal(v, &snap); err != nil {
			return fmt.Errorf("json unmarshal: %w", err)
		}
		return nil
	}); err != nil {
		return store.Snapshot{}, err
	}

	return snap, nil
}

func (s *Store) AppendEvent(e store.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	tx, err := s.db.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint

	b, err := tx.CreateBucketIfNotExists(eventBucket)
	if err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}

	seq, err := b.NextSequence()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	bytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := b.Put(key, bytes); err != nil {
		return fmt.Errorf("put to bucket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Events returns the operational log in append order. Diagnostics only.
func (s *Store) Events() ([]store.Entry, error) {
	var list []store.Entry

	if err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var e store.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("json unmarshal: %w", err)
			}
			list = append(list, e)
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction: %w", err)
	}

	return list, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing bolt file: %w", err)
	}
	return nil
}
