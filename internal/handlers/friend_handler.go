package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/geoprofiles/backend/internal/models"
	"github.com/geoprofiles/backend/internal/services"
)

type FriendHandler struct {
	profiles    *services.ProfileService
	friendships *services.FriendshipService
	log         *zap.Logger
	timeout     time.Duration
}

func NewFriendHandler(profiles *services.ProfileService, friendships *services.FriendshipService, log *zap.Logger, timeout time.Duration) *FriendHandler {
	return &FriendHandler{
		profiles:    profiles,
		friendships: friendships,
		log:         log,
		timeout:     timeout,
	}
}

// AddFriend adds friendToAdd to the friend list of the profile in the path.
// Only that profile changes; the reverse link takes its own request.
func (h *FriendHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req models.FriendRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody(w)
		return
	}

	var missing []string
	if req.Password == nil {
		missing = append(missing, "missing field: password")
	}
	if req.FriendToAdd == nil {
		missing = append(missing, "missing field: friendToAdd")
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(missing))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actorID := chi.URLParam(r, "id")
	prof, err := h.friendships.AddFriend(ctx, actorID, *req.FriendToAdd, req.Password)
	if err != nil {
		writeServiceError(w, h.log, "AddFriend", err)
		return
	}
	h.log.Info("friend added", zap.String("id", actorID), zap.String("friend", *req.FriendToAdd))
	writeJSON(w, http.StatusOK, prof.View())
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	friends, err := h.profiles.Friends(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, "ListFriends", err)
		return
	}
	writeJSON(w, http.StatusOK, views(friends))
}
