package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoprofiles/backend/internal/models"
)

// ErrNotFound is returned when an identifier does not resolve to a profile.
var ErrNotFound = errors.New("profile not found")

// Repository is the document store profiles live in. Implementations must be
// safe for concurrent use; they give no isolation across calls, so a
// read-then-update sequence can lose a concurrent write.
type Repository interface {
	// Find returns the profile with id or ErrNotFound.
	Find(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	// FindAll returns every profile in creation order.
	FindAll(ctx context.Context) ([]*models.Profile, error)
	// FindByIDs returns the profiles that exist among ids, in the order of ids.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Profile, error)
	// Insert stores a new profile, assigning its identifier.
	Insert(ctx context.Context, prof *models.Profile) (*models.Profile, error)
	// Update applies patch to the profile with id and returns the result, or ErrNotFound.
	Update(ctx context.Context, id primitive.ObjectID, patch *models.ProfilePatch) (*models.Profile, error)
	// Delete removes the profile with id. It returns ErrNotFound if nothing was removed.
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// orderByIDs arranges found profiles in the order of ids, skipping ids that
// did not resolve.
func orderByIDs(ids []primitive.ObjectID, found map[primitive.ObjectID]*models.Profile) []*models.Profile {
	out := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		if prof, ok := found[id]; ok {
			out = append(out, prof)
		}
	}
	return out
}

func clone(prof *models.Profile) *models.Profile {
	cp := *prof
	cp.Friends = append([]primitive.ObjectID{}, prof.Friends...)
	return &cp
}
