package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoprofiles/backend/internal/geo"
	"github.com/geoprofiles/backend/internal/models"
	"github.com/geoprofiles/backend/internal/security"
	"github.com/geoprofiles/backend/internal/storage"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidFriend   = errors.New("invalid friend id")
	ErrSelfFriendship  = errors.New("cannot add yourself as a friend")
)

// ProfileService turns validated mutations into repository calls and gates
// every write behind the target profile's password.
type ProfileService struct {
	repo   storage.Repository
	hasher *security.Hasher
	now    func() time.Time
}

func NewProfileService(repo storage.Repository, hasher *security.Hasher) *ProfileService {
	return &ProfileService{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

func (s *ProfileService) List(ctx context.Context) ([]*models.Profile, error) {
	return s.repo.FindAll(ctx)
}

// Get returns the profile with id. Identifiers that are not well-formed
// resolve to ErrProfileNotFound just like unknown ones.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProfileNotFound
	}

	prof, err := s.repo.Find(ctx, oid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return prof, nil
}

// Create hashes password and stores a new profile built from a complete patch.
func (s *ProfileService) Create(ctx context.Context, patch *models.ProfilePatch, password string) (*models.Profile, error) {
	if patch.Name == nil || patch.DOB == nil || patch.Address == nil ||
		patch.Lat == nil || patch.Long == nil || patch.Description == nil {
		return nil, errors.New("incomplete profile")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	prof := &models.Profile{
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
		Friends:      []primitive.ObjectID{},
	}
	patch.Apply(prof)
	prof.Friends = []primitive.ObjectID{}

	return s.repo.Insert(ctx, prof)
}

// Update applies patch to the profile with id once password checks out. The
// password hash is never part of an update.
func (s *ProfileService) Update(ctx context.Context, id string, patch *models.ProfilePatch, password *string) (*models.Profile, error) {
	prof, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(prof, password); err != nil {
		return nil, err
	}

	// Friend-list changes go through FriendshipService.
	scrubbed := *patch
	scrubbed.Friends = nil

	return s.update(ctx, prof.ID, &scrubbed)
}

// Delete removes the profile with id once password checks out. A missing
// profile yields ErrProfileNotFound, which callers treat as already deleted.
func (s *ProfileService) Delete(ctx context.Context, id string, password *string) error {
	prof, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(prof, password); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, prof.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

// ResolveFriends loads the profiles referenced by prof's friend list, in list
// order. References to profiles deleted since they were added are skipped.
func (s *ProfileService) ResolveFriends(ctx context.Context, prof *models.Profile) ([]*models.Profile, error) {
	return s.repo.FindByIDs(ctx, prof.Friends)
}

// Friends returns the resolved friend list of the profile with id.
func (s *ProfileService) Friends(ctx context.Context, id string) ([]*models.Profile, error) {
	prof, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ResolveFriends(ctx, prof)
}

// Distance returns the great-circle distance between two stored profiles.
func (s *ProfileService) Distance(ctx context.Context, fromID, toID string) (*models.DistanceView, error) {
	from, err := s.Get(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.Get(ctx, toID)
	if err != nil {
		return nil, err
	}

	return &models.DistanceView{
		From:   from.ID.Hex(),
		To:     to.ID.Hex(),
		Meters: geo.Distance(from.Lat, from.Long, to.Lat, to.Long),
	}, nil
}

// authorize is the credential gate: a missing or mismatched password is
// rejected without saying which.
func (s *ProfileService) authorize(prof *models.Profile, password *string) error {
	if password == nil || !s.hasher.Verify(*password, prof.PasswordHash) {
		return ErrInvalidPassword
	}
	return nil
}

func (s *ProfileService) update(ctx context.Context, id primitive.ObjectID, patch *models.ProfilePatch) (*models.Profile, error) {
	prof, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return prof, nil
}
