// Package session owns the client-held booking wizard state: one record in
// an untrusted storage slot, obfuscated against casual inspection, checked
// for tampering on every load, and expired after 30 minutes of inactivity.
//
// Loads never fail from the caller's perspective. Absence, unreadable data,
// a bad checksum, and expiry all collapse to the same outcome: the slot is
// cleared and a fresh default record is returned. Integrity verification
// always completes before a loaded record is handed to anyone.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/awnumar/memguard"

	"github.com/amberrentals/bookingcore/fingerprint"
	"github.com/amberrentals/bookingcore/integrity"
	"github.com/amberrentals/bookingcore/internal/util"
	"github.com/amberrentals/bookingcore/issue"
	"github.com/amberrentals/bookingcore/obfuscate"
	"github.com/amberrentals/bookingcore/storage"
)

// Timeout is the idle window after which a persisted session is discarded
// regardless of checksum validity.
const Timeout = 30 * time.Minute

// Store owns the single persisted session record. It holds the environment
// key explicitly (no package-level key cache) inside a memguard enclave and
// opens it per operation.
type Store struct {
	mu     sync.Mutex
	slot   storage.Slot
	key    *memguard.Enclave
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the structured logger for session reset events.
// If not set, a JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store over the given slot, keyed by the environment
// fingerprint derived once by the caller.
func NewStore(slot storage.Slot, key fingerprint.KeyMaterial, opts ...Option) *Store {
	s := &Store{
		slot: slot,
		key:  memguard.NewEnclave(util.CopyBytes(key)),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return s
}

// Init creates a fresh record with a new session id, persists it, and
// returns it. Any previously stored session is overwritten.
func (s *Store) Init() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := issue.NewSessionID()
	if err != nil {
		return nil, err
	}
	r := &Record{SessionID: id, Step: StepBrowse}
	if err := s.persist(r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// Load returns the current session record. The result is always usable:
// if nothing valid is stored, it is a fresh default record (not persisted)
// and the slot has been cleared.
func (s *Store) Load() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Clone()
}

// Save merges a partial update onto the current record, stamps the touch
// time, recomputes the checksum, and writes the slot. This is the only
// write path; mutators below are layered on it.
func (s *Store) Save(u Update) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(u, nil)
}

// Clear removes the persisted record entirely.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.slot.Clear(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// UpdateSearchCriteria persists new search criteria. No step change.
func (s *Store) UpdateSearchCriteria(c SearchCriteria) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Update{SearchCriteria: &c}, nil)
}

// SetVehicleSelection records the chosen vehicle and advances the session
// to the booking step if it has not reached it yet.
func (s *Store) SetVehicleSelection(vehicle json.RawMessage) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := StepBooking
	return s.save(Update{VehicleSelection: vehicle}, &step)
}

// SetRenterInfo persists the renter form. No step change.
func (s *Store) SetRenterInfo(info RenterInfo) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Update{RenterInfo: &info}, nil)
}

// SetDriveOption persists the drive option. No step change.
func (s *Store) SetDriveOption(opt DriveOption) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Update{DriveOption: &opt}, nil)
}

// AgreeToTerms marks the terms as accepted and advances the session to the
// checkout step if it has not reached it yet.
func (s *Store) AgreeToTerms() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agreed := true
	step := StepCheckout
	return s.save(Update{AgreedToTerms: &agreed}, &step)
}

// MarkSubmitted sets the final step. Called once, by booking finalization.
func (s *Store) MarkSubmitted() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := StepSubmitted
	return s.save(Update{}, &step)
}

func defaultRecord() *Record {
	return &Record{Step: StepBrowse}
}

func (s *Store) save(u Update, advanceTo *Step) (*Record, error) {
	r := s.load()
	if r.SessionID == "" {
		id, err := issue.NewSessionID()
		if err != nil {
			return nil, err
		}
		r.SessionID = id
	}
	r.apply(u)
	if advanceTo != nil {
		r.Step = r.Step.advance(*advanceTo)
	}
	if err := s.persist(r); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// load reads, deobfuscates, parses, expires, and verifies. Verification
// completes here, synchronously; no record leaves this method unverified.
func (s *Store) load() *Record {
	raw, err := s.slot.Read()
	if err != nil {
		if !errors.Is(err, storage.ErrSlotEmpty) {
			s.logger.Warn("session slot unreadable, treating as absent",
				slog.String("error", err.Error()))
		}
		return defaultRecord()
	}

	var plain []byte
	if err := s.withKey(func(key []byte) error {
		p, derr := obfuscate.Deobfuscate(raw, key)
		if derr != nil {
			return derr
		}
		plain = p
		return nil
	}); err != nil {
		s.reset("unreadable", err)
		return defaultRecord()
	}

	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		s.reset("unreadable", err)
		return defaultRecord()
	}
	if rec.SessionID == "" || !rec.Step.Valid() {
		s.reset("unreadable", errors.New("malformed record"))
		return defaultRecord()
	}

	if s.now().Sub(rec.LastTouchedAt) > Timeout {
		s.reset("expired", nil)
		return defaultRecord()
	}

	canonical, err := rec.canonical()
	if err != nil {
		s.reset("unreadable", err)
		return defaultRecord()
	}
	verified := false
	if err := s.withKey(func(key []byte) error {
		verified = integrity.Verify(canonical, key, rec.Checksum)
		return nil
	}); err != nil || !verified {
		s.reset("integrity failure", err)
		return defaultRecord()
	}

	return &rec
}

func (s *Store) persist(r *Record) error {
	r.LastTouchedAt = s.now().UTC()
	canonical, err := r.canonical()
	if err != nil {
		return err
	}
	return s.withKey(func(key []byte) error {
		tag, cerr := integrity.Checksum(canonical, key)
		if cerr != nil {
			return cerr
		}
		r.Checksum = tag
		data, merr := json.Marshal(r)
		if merr != nil {
			return fmt.Errorf("serializing session record: %w", merr)
		}
		if werr := s.slot.Write(obfuscate.Obfuscate(data, key)); werr != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, werr)
		}
		return nil
	})
}

// reset clears the slot and logs why. The user only ever sees a restarted
// wizard, never the suspect data.
func (s *Store) reset(reason string, cause error) {
	attrs := []any{slog.String("reason", reason)}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	s.logger.Warn("discarding stored session", attrs...)
	if err := s.slot.Clear(); err != nil {
		s.logger.Warn("clearing session slot failed",
			slog.String("error", err.Error()))
	}
}

func (s *Store) withKey(fn func(key []byte) error) error {
	buf, err := s.key.Open()
	if err != nil {
		return fmt.Errorf("opening key enclave: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}
