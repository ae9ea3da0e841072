package session

import "errors"

// ErrStorageUnavailable indicates the persistence slot could not be written.
// The in-memory record is left unpersisted; the caller's page keeps working.
var ErrStorageUnavailable = errors.New("session storage unavailable")
