// Package memory provides thread-safe in-memory implementations of
// storage.Slot and storage.Repository. Suitable for testing, demos, and
// single-process use cases.
package memory

import (
	"encoding/json"
	"sync"

	"github.com/amberrentals/bookingcore/storage"
)

// Slot is an in-memory implementation of storage.Slot.
type Slot struct {
	mu      sync.Mutex
	value   string
	present bool
}

var _ storage.Slot = (*Slot)(nil)

// NewSlot creates a new empty in-memory Slot.
func NewSlot() *Slot {
	return &Slot{}
}

func (s *Slot) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return "", storage.ErrSlotEmpty
	}
	return s.value, nil
}

func (s *Slot) Write(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.present = true
	return nil
}

func (s *Slot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	s.present = false
	return nil
}

// Repository is a thread-safe in-memory implementation of storage.Repository.
type Repository struct {
	mu   sync.RWMutex
	data map[string]*storage.BookingRecord
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]*storage.BookingRecord)}
}

func cloneRecord(rec *storage.BookingRecord) *storage.BookingRecord {
	if rec == nil {
		return nil
	}
	return &storage.BookingRecord{
		Reference:      rec.Reference,
		TokenHash:      rec.TokenHash,
		TokenExpiresAt: rec.TokenExpiresAt,
		CreatedAt:      rec.CreatedAt,
		Details:        append(json.RawMessage(nil), rec.Details...),
	}
}

func (r *Repository) Put(record *storage.BookingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[record.Reference]; ok {
		return storage.ErrReferenceTaken
	}
	r.data[record.Reference] = cloneRecord(record)
	return nil
}

func (r *Repository) Get(reference string) (*storage.BookingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[reference]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *Repository) Delete(reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[reference]; !ok {
		return storage.ErrNotFound
	}
	delete(r.data, reference)
	return nil
}
