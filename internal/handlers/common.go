package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/geoprofiles/backend/internal/models"
	"github.com/geoprofiles/backend/internal/services"
	"github.com/geoprofiles/backend/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeBody decodes the request body into dst. The body must hold exactly
// one JSON value. An empty body is accepted when allowEmpty is set and leaves
// dst untouched.
func decodeBody(r *http.Request, dst interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeBadBody(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
}

// writeServiceError maps a service or validation error to its status code.
// Anything unrecognized is a backend failure and goes out as a 400 carrying
// the raw message.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(verr.Messages()))
	case errors.Is(err, services.ErrInvalidPassword):
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("invalid password"))
	case errors.Is(err, services.ErrProfileNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("profile not found"))
	case errors.Is(err, services.ErrInvalidFriend), errors.Is(err, services.ErrSelfFriendship):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
	default:
		log.Error("request failed", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
	}
}

func views(profiles []*models.Profile) []models.ProfileView {
	out := make([]models.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.View())
	}
	return out
}
