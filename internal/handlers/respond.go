package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"invoiceBack/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto HTTP statuses. Server-side
// failures are logged; their causes are not echoed to the caller.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		verr *models.ValidationError
		derr *models.DeliveryError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, models.ErrNoRecord):
		writeError(w, http.StatusNotFound, "Invoice not found")
	case errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, models.ErrInvalidAdminCode):
		writeError(w, http.StatusForbidden, "Invalid admin access code")
	case errors.Is(err, models.ErrAccountNotVerified):
		writeError(w, http.StatusForbidden, "Account is not verified")
	case errors.Is(err, models.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "Email is already registered")
	case errors.Is(err, models.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "Invalid or expired code")
	case errors.Is(err, models.ErrOTPAttemptsExceeded):
		writeError(w, http.StatusTooManyRequests, "Too many attempts, request a new code")
	case errors.As(err, &derr):
		log.Error().Err(err).Str("stage", string(derr.Stage)).Msg("delivery failed")
		if derr.Stage == models.StageSend {
			writeError(w, http.StatusInternalServerError, "Failed to send email")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to render invoice")
	case errors.Is(err, models.ErrStorageUnavailable):
		log.Error().Err(err).Msg("storage failure")
		writeError(w, http.StatusInternalServerError, "Storage unavailable")
	default:
		log.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &models.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

const maxBodyBytes = 1 << 20
