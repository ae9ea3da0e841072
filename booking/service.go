// Package booking is the server-side collaborator that turns a completed
// wizard session into a durable booking: it mints the reference and magic
// token, stores only the token's hash, and later authorizes anonymous
// tracking lookups and magic-link access.
package booking

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/amberrentals/bookingcore/issue"
	"github.com/amberrentals/bookingcore/session"
	"github.com/amberrentals/bookingcore/storage"
)

// referenceRE matches well-formed booking references before any repository
// lookup; everything else is a guaranteed miss.
var referenceRE = regexp.MustCompile(`^AR-\d{4}-[A-HJ-NP-Z2-9]{4}$`)

// putRetries bounds how often Finalize redraws a colliding reference.
const putRetries = 3

// Service finalizes bookings and authorizes later access to them.
type Service struct {
	repo   storage.Repository
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger for booking events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service over the given repository.
func NewService(repo storage.Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
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

// Details is the subset of session state persisted with a booking.
type Details struct {
	SearchCriteria   *session.SearchCriteria `json:"search_criteria,omitempty"`
	VehicleSelection json.RawMessage         `json:"vehicle_selection,omitempty"`
	RenterInfo       *session.RenterInfo     `json:"renter_info,omitempty"`
	DriveOption      session.DriveOption     `json:"drive_option,omitempty"`
}

// Finalized is handed back exactly once per booking. MagicToken is the only
// copy of the raw token that will ever exist outside the renter's inbox.
type Finalized struct {
	Reference      string
	MagicToken     string
	TokenExpiresAt time.Time
}

// Finalize validates that the session completed the wizard, mints the
// booking reference and magic token, and persists the booking with the
// token hash. The raw token is returned and never stored.
func (s *Service) Finalize(ctx context.Context, rec *session.Record) (*Finalized, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateComplete(rec); err != nil {
		return nil, err
	}

	token, err := issue.NewMagicToken()
	if err != nil {
		return nil, err
	}
	expiresAt := issue.ComputeExpiry(s.now())

	details, err := json.Marshal(Details{
		SearchCriteria:   rec.SearchCriteria,
		VehicleSelection: rec.VehicleSelection,
		RenterInfo:       rec.RenterInfo,
		DriveOption:      rec.DriveOption,
	})
	if err != nil {
		return nil, fmt.Errorf("serializing booking details: %w", err)
	}

	var reference string
	for attempt := 0; ; attempt++ {
		reference, err = issue.NewBookingReference()
		if err != nil {
			return nil, err
		}
		err = s.repo.Put(&storage.BookingRecord{
			Reference:      reference,
			TokenHash:      issue.HashToken(token),
			TokenExpiresAt: expiresAt,
			CreatedAt:      s.now().UTC(),
			Details:        details,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrReferenceTaken) || attempt == putRetries {
			return nil, fmt.Errorf("storing booking: %w", err)
		}
	}

	s.logger.Info("booking finalized",
		slog.String("reference", reference),
		slog.Time("token_expires_at", expiresAt))

	return &Finalized{
		Reference:      reference,
		MagicToken:     token,
		TokenExpiresAt: expiresAt,
	}, nil
}

// Track returns the booking for a reference. The reference is the only
// credential for tracking, so Details never holds anything beyond what the
// renter typed into the wizard themselves.
func (s *Service) Track(ctx context.Context, reference string) (*storage.BookingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !referenceRE.MatchString(reference) {
		return nil, fmt.Errorf("%s: %w", reference, storage.ErrNotFound)
	}
	return s.repo.Get(reference)
}

// Authorize checks a raw magic token against the stored hash for the given
// reference. Expiry is checked first; a stale token never validates.
func (s *Service) Authorize(ctx context.Context, reference, rawToken string) error {
	rec, err := s.Track(ctx, reference)
	if err != nil {
		return err
	}
	if issue.IsExpired(rec.TokenExpiresAt) {
		return ErrTokenExpired
	}
	if !hmac.Equal([]byte(issue.HashToken(rawToken)), []byte(rec.TokenHash)) {
		return ErrInvalidToken
	}
	return nil
}

func validateComplete(rec *session.Record) error {
	switch {
	case rec == nil:
		return fmt.Errorf("%w: no session", ErrIncomplete)
	case !rec.Step.Reached(session.StepCheckout):
		return fmt.Errorf("%w: session at step %s", ErrIncomplete, rec.Step)
	case rec.VehicleSelection == nil:
		return fmt.Errorf("%w: no vehicle selected", ErrIncomplete)
	case rec.RenterInfo == nil:
		return fmt.Errorf("%w: renter info missing", ErrIncomplete)
	case !rec.AgreedToTerms:
		return fmt.Errorf("%w: terms not agreed", ErrIncomplete)
	}
	return nil
}
