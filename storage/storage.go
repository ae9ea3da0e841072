// Package storage provides the storage abstraction layer for the booking
// trust core: a single-slot text store for the obfuscated session blob, and
// a repository for finalized booking records.
package storage

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrSlotEmpty is returned by Slot.Read when no value has been written.
	ErrSlotEmpty = errors.New("storage slot empty")
	// ErrNotFound is returned when no booking exists for a reference.
	ErrNotFound = errors.New("booking not found")
	// ErrReferenceTaken is returned when a booking reference is already in use.
	ErrReferenceTaken = errors.New("booking reference taken")
)

// SlotKey is the fixed key under which the session blob is persisted.
const SlotKey = "ar.booking.session"

// Slot is one opaque text value in untrusted storage. The session store is
// the only writer; the value is a base64 blob it alone can interpret.
type Slot interface {
	// Read returns the stored value, or ErrSlotEmpty if none exists.
	Read() (string, error)
	// Write replaces the stored value.
	Write(value string) error
	// Clear removes the stored value. Clearing an empty slot is not an error.
	Clear() error
}

// BookingRecord is the server-side state for a finalized booking. Only the
// hash of the magic token is ever stored; the raw token is handed to the
// renter once and never persisted.
type BookingRecord struct {
	Reference      string          `json:"reference"`
	TokenHash      string          `json:"token_hash"`
	TokenExpiresAt time.Time       `json:"token_expires_at"`
	CreatedAt      time.Time       `json:"created_at"`
	Details        json.RawMessage `json:"details"`
}

// Repository stores finalized bookings keyed by their reference.
type Repository interface {
	// Put stores a new booking. Returns ErrReferenceTaken if the reference
	// is already in use.
	Put(record *BookingRecord) error
	// Get retrieves a booking by reference, or ErrNotFound.
	Get(reference string) (*BookingRecord, error)
	// Delete removes a booking by reference, or ErrNotFound.
	Delete(reference string) error
}
