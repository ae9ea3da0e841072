package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberrentals/bookingcore/fingerprint"
	"github.com/amberrentals/bookingcore/storage"
	"github.com/amberrentals/bookingcore/storage/memory"
)

var testKey = fingerprint.DeriveKey(fingerprint.Signals{
	UserAgent:    "Mozilla/5.0 (X11; Linux x86_64)",
	ScreenWidth:  1920,
	ScreenHeight: 1080,
	Timezone:     "Europe/Berlin",
})

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func createTestStore(t *testing.T, opts ...Option) (*Store, *memory.Slot) {
	t.Helper()
	slot := memory.NewSlot()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewStore(slot, testKey, opts...), slot
}

func TestInit(t *testing.T) {
	store, slot := createTestStore(t)

	rec, err := store.Init()
	require.NoError(t, err)

	assert.NotEmpty(t, rec.SessionID)
	assert.Equal(t, StepBrowse, rec.Step)
	assert.Nil(t, rec.SearchCriteria)
	assert.Nil(t, rec.VehicleSelection)
	assert.Nil(t, rec.RenterInfo)
	assert.Empty(t, rec.DriveOption)
	assert.False(t, rec.AgreedToTerms)

	// Init persists; a load sees the same session.
	loaded := store.Load()
	assert.Equal(t, rec.SessionID, loaded.SessionID)

	// The stored blob is opaque.
	blob, err := slot.Read()
	require.NoError(t, err)
	assert.NotContains(t, blob, rec.SessionID)
}

func TestLoadWhenAbsent(t *testing.T) {
	store, slot := createTestStore(t)

	rec := store.Load()
	assert.Equal(t, StepBrowse, rec.Step)
	assert.Empty(t, rec.SessionID)

	// A default load must not persist anything.
	_, err := slot.Read()
	assert.ErrorIs(t, err, storage.ErrSlotEmpty)
}

func TestSaveRoundTrip(t *testing.T) {
	store, _ := createTestStore(t)

	_, err := store.Init()
	require.NoError(t, err)

	criteria := SearchCriteria{
		PickupLocation: "Lisbon Airport",
		PickupDate:     "2026-09-12",
		ReturnDate:     "2026-09-19",
		StartTime:      "10:00",
		DeliveryMethod: "pickup",
	}
	saved, err := store.UpdateSearchCriteria(criteria)
	require.NoError(t, err)

	_, err = store.SetRenterInfo(RenterInfo{
		FullName:       "Jo Fernandes",
		Email:          "jo@example.com",
		PhoneNumber:    "+351 900 000 000",
		DriversLicense: "L-1234567",
	})
	require.NoError(t, err)

	_, err = store.SetDriveOption(WithDriver)
	require.NoError(t, err)

	loaded := store.Load()
	assert.Equal(t, saved.SessionID, loaded.SessionID)
	require.NotNil(t, loaded.SearchCriteria)
	assert.Equal(t, criteria, *loaded.SearchCriteria)
	require.NotNil(t, loaded.RenterInfo)
	assert.Equal(t, "Jo Fernandes", loaded.RenterInfo.FullName)
	assert.Equal(t, WithDriver, loaded.DriveOption)
}

func TestWizardScenario(t *testing.T) {
	store, _ := createTestStore(t)
	guard := NewGuard(store)

	rec, err := store.Init()
	require.NoError(t, err)
	assert.Equal(t, StepBrowse, rec.Step)

	// Selecting a vehicle advances to booking.
	_, err = store.SetVehicleSelection(json.RawMessage(`{"id":"veh-42","model":"Corolla"}`))
	require.NoError(t, err)
	assert.Equal(t, StepBooking, store.Load().Step)

	// Agreeing to terms advances to checkout.
	_, err = store.AgreeToTerms()
	require.NoError(t, err)
	loaded := store.Load()
	assert.Equal(t, StepCheckout, loaded.Step)
	assert.True(t, loaded.AgreedToTerms)

	// Checkout does not open the submitted page.
	assert.False(t, guard.CanAccess(StepSubmitted))
	assert.True(t, guard.CanAccess(StepBrowse))
	assert.True(t, guard.CanAccess(StepBooking))
	assert.True(t, guard.CanAccess(StepCheckout))

	_, err = store.MarkSubmitted()
	require.NoError(t, err)
	assert.True(t, guard.CanAccess(StepSubmitted))
}

func TestStepNeverMovesBackward(t *testing.T) {
	store, _ := createTestStore(t)

	_, err := store.Init()
	require.NoError(t, err)
	_, err = store.AgreeToTerms()
	require.NoError(t, err)
	require.Equal(t, StepCheckout, store.Load().Step)

	// Re-selecting a vehicle from checkout must not demote the step.
	_, err = store.SetVehicleSelection(json.RawMessage(`{"id":"veh-7"}`))
	require.NoError(t, err)
	assert.Equal(t, StepCheckout, store.Load().Step)
}

func TestTamperDetection(t *testing.T) {
	store, slot := createTestStore(t)

	rec, err := store.Init()
	require.NoError(t, err)
	_, err = store.SetVehicleSelection(json.RawMessage(`{"id":"veh-42"}`))
	require.NoError(t, err)

	original, err := slot.Read()
	require.NoError(t, err)

	for i := 0; i < len(original); i++ {
		tampered := []byte(original)
		tampered[i] ^= 0x01
		require.NoError(t, slot.Write(string(tampered)))

		loaded := store.Load()
		assert.NotEqual(t, rec.SessionID, loaded.SessionID,
			"flipping byte %d went undetected", i)
		assert.Equal(t, StepBrowse, loaded.Step)

		// Tampering clears the slot.
		_, err := slot.Read()
		assert.ErrorIs(t, err, storage.ErrSlotEmpty, "byte %d", i)

		require.NoError(t, slot.Write(original))
	}

	// Untampered blob still loads.
	assert.Equal(t, rec.SessionID, store.Load().SessionID)
}

func TestForeignDataInSlot(t *testing.T) {
	store, slot := createTestStore(t)

	for _, blob := range []string{
		"not base64 at all!!!",
		"aGVsbG8gd29ybGQ=", // valid base64, garbage after deobfuscation
		"",
	} {
		require.NoError(t, slot.Write(blob))
		rec := store.Load()
		assert.Equal(t, StepBrowse, rec.Step)
		assert.Empty(t, rec.SessionID)
		_, err := slot.Read()
		assert.ErrorIs(t, err, storage.ErrSlotEmpty)
	}
}

func TestTimeout(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store, slot := createTestStore(t, WithClock(clock))

	rec, err := store.Init()
	require.NoError(t, err)

	// 29 minutes idle: still valid.
	now = now.Add(29 * time.Minute)
	assert.Equal(t, rec.SessionID, store.Load().SessionID)

	// Loading does not refresh the touch time; 31 minutes after the last
	// save the record is rejected even with a perfectly valid checksum.
	now = now.Add(2 * time.Minute)
	loaded := store.Load()
	assert.Empty(t, loaded.SessionID)
	assert.Equal(t, StepBrowse, loaded.Step)
	_, err = slot.Read()
	assert.ErrorIs(t, err, storage.ErrSlotEmpty)
}

func TestSaveRefreshesTimeout(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store, _ := createTestStore(t, WithClock(clock))

	rec, err := store.Init()
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = store.SetDriveOption(SelfDrive)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, rec.SessionID, store.Load().SessionID)
}

func TestClear(t *testing.T) {
	store, slot := createTestStore(t)

	_, err := store.Init()
	require.NoError(t, err)
	require.NoError(t, store.Clear())

	_, err = slot.Read()
	assert.ErrorIs(t, err, storage.ErrSlotEmpty)
	assert.Empty(t, store.Load().SessionID)
}

func TestSaveWithoutInitCreatesSession(t *testing.T) {
	store, _ := createTestStore(t)

	rec, err := store.UpdateSearchCriteria(SearchCriteria{PickupLocation: "Porto"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.SessionID)
	assert.Equal(t, StepBrowse, rec.Step)
	assert.Equal(t, rec.SessionID, store.Load().SessionID)
}

// failingSlot simulates quota errors and other storage-layer failures.
type failingSlot struct {
	readErr  error
	writeErr error
}

func (f *failingSlot) Read() (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	return "", storage.ErrSlotEmpty
}

func (f *failingSlot) Write(string) error { return f.writeErr }
func (f *failingSlot) Clear() error       { return nil }

func TestStorageFailures(t *testing.T) {
	t.Run("WriteFailure", func(t *testing.T) {
		slot := &failingSlot{writeErr: errors.New("quota exceeded")}
		store := NewStore(slot, testKey, WithLogger(quietLogger()))

		_, err := store.Init()
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("ReadFailureIsNotFatal", func(t *testing.T) {
		slot := &failingSlot{readErr: errors.New("medium unavailable")}
		store := NewStore(slot, testKey, WithLogger(quietLogger()))

		rec := store.Load()
		assert.Equal(t, StepBrowse, rec.Step)
	})
}

func TestWrongKeyLooksLikeTampering(t *testing.T) {
	slot := memory.NewSlot()
	store := NewStore(slot, testKey, WithLogger(quietLogger()))
	rec, err := store.Init()
	require.NoError(t, err)

	otherKey := fingerprint.DeriveKey(fingerprint.Signals{
		UserAgent: "curl/8.0", ScreenWidth: 80, ScreenHeight: 24, Timezone: "UTC",
	})
	other := NewStore(slot, otherKey, WithLogger(quietLogger()))

	loaded := other.Load()
	assert.NotEqual(t, rec.SessionID, loaded.SessionID)
	assert.Equal(t, StepBrowse, loaded.Step)
}
