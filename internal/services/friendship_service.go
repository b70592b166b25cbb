package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoprofiles/backend/internal/models"
)

// FriendshipService maintains friend lists.
//
// AddFriend is one-directional: a mutual friendship takes a second call with
// the roles swapped, and nothing stops a one-sided friendship from existing if
// that call never happens. The friend list is read, extended and written back
// without isolation, so two concurrent adds on the same actor can lose one of
// the updates.
type FriendshipService struct {
	profiles *ProfileService
}

func NewFriendshipService(profiles *ProfileService) *FriendshipService {
	return &FriendshipService{profiles: profiles}
}

// AddFriend adds friendID to the friend list of actorID, authorized by the
// actor's password. Adding a friend already on the list is a no-op.
func (s *FriendshipService) AddFriend(ctx context.Context, actorID, friendID string, password *string) (*models.Profile, error) {
	actor, err := s.profiles.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.authorize(actor, password); err != nil {
		return nil, err
	}

	friendOID, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFriend, friendID)
	}
	if friendOID == actor.ID {
		return nil, ErrSelfFriendship
	}
	if _, err := s.profiles.Get(ctx, friendID); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFriend, friendID)
		}
		return nil, err
	}

	if actor.HasFriend(friendOID) {
		return actor, nil
	}

	friends := append(append([]primitive.ObjectID{}, actor.Friends...), friendOID)
	return s.profiles.update(ctx, actor.ID, &models.ProfilePatch{Friends: friends})
}
