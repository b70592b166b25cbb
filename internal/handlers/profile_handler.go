package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/geoprofiles/backend/internal/models"
	"github.com/geoprofiles/backend/internal/services"
	"github.com/geoprofiles/backend/internal/validation"
)

type ProfileHandler struct {
	profiles  *services.ProfileService
	validator *validation.Validator
	log       *zap.Logger
	timeout   time.Duration
}

func NewProfileHandler(profiles *services.ProfileService, validator *validation.Validator, log *zap.Logger, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		validator: validator,
		log:       log,
		timeout:   timeout,
	}
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profiles, err := h.profiles.List(ctx)
	if err != nil {
		writeServiceError(w, h.log, "ListProfiles", err)
		return
	}
	writeJSON(w, http.StatusOK, views(profiles))
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	prof, err := h.profiles.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, "GetProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, prof.View())
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var sub models.ProfileSubmission
	if err := decodeBody(r, &sub, false); err != nil {
		writeBadBody(w)
		return
	}

	patch, err := h.validator.Validate(&sub, validation.Create)
	if err != nil {
		writeServiceError(w, h.log, "CreateProfile", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	prof, err := h.profiles.Create(ctx, patch, *sub.Password)
	if err != nil {
		writeServiceError(w, h.log, "CreateProfile", err)
		return
	}
	h.log.Info("profile created", zap.String("id", prof.ID.Hex()))
	writeJSON(w, http.StatusCreated, prof.View())
}

// UpdateProfile validates before looking the profile up, so a malformed
// patch is a 400 even for an unknown id.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var sub models.ProfileSubmission
	if err := decodeBody(r, &sub, false); err != nil {
		writeBadBody(w)
		return
	}

	patch, err := h.validator.Validate(&sub, validation.Update)
	if err != nil {
		writeServiceError(w, h.log, "UpdateProfile", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	prof, err := h.profiles.Update(ctx, chi.URLParam(r, "id"), patch, sub.Password)
	if err != nil {
		writeServiceError(w, h.log, "UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, prof.View())
}

// DeleteProfile answers 204 for a profile that does not exist. A body that
// does not decode counts as no password, so the outcome is 204 or 401.
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordRequest
	if err := decodeBody(r, &req, true); err != nil {
		req.Password = nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.profiles.Delete(ctx, id, req.Password); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeServiceError(w, h.log, "DeleteProfile", err)
		return
	}
	h.log.Info("profile deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) Distance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	d, err := h.profiles.Distance(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "otherId"))
	if err != nil {
		writeServiceError(w, h.log, "Distance", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
