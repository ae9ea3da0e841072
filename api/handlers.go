package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amberrentals/bookingcore/booking"
	"github.com/amberrentals/bookingcore/session"
	"github.com/amberrentals/bookingcore/upload"
)

// maxBodySize bounds request bodies; the largest legitimate payload is a
// session record with an embedded vehicle selection.
const maxBodySize = 64 << 10

// FinalizeBooking handles POST /bookings. The body is the completed session
// record as submitted by the wizard's final page.
func (a *API) FinalizeBooking(w http.ResponseWriter, r *http.Request) {
	var rec session.Record
	if err := decodeBody(w, r, &rec); err != nil {
		return
	}

	fin, err := a.bookings.Finalize(r.Context(), &rec)
	if err != nil {
		if !errors.Is(err, booking.ErrIncomplete) {
			a.logger.Error("finalize failed", slog.String("error", err.Error()))
		}
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FinalizeBookingResponse{
		Reference:      fin.Reference,
		MagicToken:     fin.MagicToken,
		TokenExpiresAt: fin.TokenExpiresAt,
	})
}

// TrackBooking handles GET /bookings/{reference}.
func (a *API) TrackBooking(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	rec, err := a.bookings.Track(r.Context(), reference)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrackBookingResponse{
		Reference: rec.Reference,
		CreatedAt: rec.CreatedAt,
		Details:   rec.Details,
	})
}

// ValidateAccess handles POST /bookings/{reference}/access: it checks a raw
// magic token against the stored hash.
func (a *API) ValidateAccess(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var req ValidateAccessRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	if err := a.bookings.Authorize(r.Context(), reference, req.Token); err != nil {
		a.logger.Warn("magic link rejected",
			slog.String("reference", reference),
			slog.String("error", err.Error()))
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateAccessResponse{Valid: true})
}

// CheckUpload handles POST /uploads/check. Rejections are part of the
// contract, not errors: the response says why.
func (a *API) CheckUpload(w http.ResponseWriter, r *http.Request) {
	var req CheckUploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	info := upload.FileInfo{
		Filename: req.Filename,
		MIMEType: req.MIMEType,
		Size:     req.SizeBytes,
	}
	if err := upload.Validate(info); err != nil {
		writeJSON(w, http.StatusOK, CheckUploadResponse{
			Allowed: false,
			Reason:  err.Error(),
		})
		return
	}

	stored, err := upload.SanitizeFilename(req.Filename)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckUploadResponse{
		Allowed:        true,
		StoredFilename: stored,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return err
	}
	return nil
}
