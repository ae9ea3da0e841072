package api

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FinalizeBookingResponse is returned from POST /bookings. The magic token
// appears here once and is never retrievable again.
type FinalizeBookingResponse struct {
	Reference      string    `json:"reference"`
	MagicToken     string    `json:"magic_token"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}

// TrackBookingResponse is returned from GET /bookings/{reference}.
type TrackBookingResponse struct {
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
	Details   json.RawMessage `json:"details"`
}

// ValidateAccessRequest is the JSON body for POST /bookings/{reference}/access.
type ValidateAccessRequest struct {
	Token string `json:"token"`
}

// ValidateAccessResponse is returned from POST /bookings/{reference}/access.
type ValidateAccessResponse struct {
	Valid bool `json:"valid"`
}

// CheckUploadRequest is the JSON body for POST /uploads/check.
type CheckUploadRequest struct {
	Filename  string `json:"filename"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// CheckUploadResponse is returned from POST /uploads/check.
type CheckUploadResponse struct {
	Allowed        bool   `json:"allowed"`
	StoredFilename string `json:"stored_filename,omitempty"`
	Reason         string `json:"reason,omitempty"`
}
