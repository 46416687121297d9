package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"agendador/internal/domain"
	"agendador/internal/schedule"

	"github.com/go-playground/validator/v10"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps service-layer errors onto HTTP statuses. Conflicts
// carry the colliding booking in the body so the client can show the taken
// interval.
func writeServiceError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    conflict.Error(),
			"conflict": conflict.With,
		})
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case errors.Is(err, schedule.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
