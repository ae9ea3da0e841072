// Package bbolt provides BBolt-backed implementations of storage.Slot and
// storage.Repository for durable single-node deployments.
package bbolt

import (
	"encoding/json"
	"fmt"

	"github.com/amberrentals/bookingcore/storage"
	"go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("sessions")
	bookingBucket = []byte("bookings")
)

// Store wraps a BBolt database and hands out Slot and Repository views.
type Store struct {
	db *bbolt.DB
}

var _ storage.Repository = (*Store)(nil)

// NewStore returns a Store backed by the given BBolt database.
func NewStore(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewStoreFromFile opens a BBolt database at the given path.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Slot returns a storage.Slot persisting one value under the given key in
// the sessions bucket.
func (s *Store) Slot(key string) storage.Slot {
	return &slot{db: s.db, key: []byte(key)}
}

type slot struct {
	db  *bbolt.DB
	key []byte
}

func (s *slot) Read() (string, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return storage.ErrSlotEmpty
		}
		data := b.Get(s.key)
		if data == nil {
			return storage.ErrSlotEmpty
		}
		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (s *slot) Write(value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(sessionBucket)
		if err != nil {
			return err
		}
		return b.Put(s.key, []byte(value))
	})
}

func (s *slot) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return nil
		}
		return b.Delete(s.key)
	})
}

func (s *Store) Put(record *storage.BookingRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bookingBucket)
		if err != nil {
			return err
		}
		key := []byte(record.Reference)
		if b.Get(key) != nil {
			return storage.ErrReferenceTaken
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *Store) Get(reference string) (*storage.BookingRecord, error) {
	var record storage.BookingRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bookingBucket)
		if b == nil {
			return fmt.Errorf("%s: %w", reference, storage.ErrNotFound)
		}
		data := b.Get([]byte(reference))
		if data == nil {
			return fmt.Errorf("%s: %w", reference, storage.ErrNotFound)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) Delete(reference string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bookingBucket)
		if b == nil || b.Get([]byte(reference)) == nil {
			return fmt.Errorf("%s: %w", reference, storage.ErrNotFound)
		}
		return b.Delete([]byte(reference))
	})
}
