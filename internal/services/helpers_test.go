package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/geoprofiles/backend/internal/models"
	"github.com/geoprofiles/backend/internal/security"
	"github.com/geoprofiles/backend/internal/storage"
)

// countingRepo wraps a repository and counts the writes that reach it.
type countingRepo struct {
	storage.Repository
	writes  int
	failAll error
}

func (r *countingRepo) Find(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	return r.Repository.Find(ctx, id)
}

func (r *countingRepo) Insert(ctx context.Context, prof *models.Profile) (*models.Profile, error) {
	r.writes++
	return r.Repository.Insert(ctx, prof)
}

func (r *countingRepo) Update(ctx context.Context, id primitive.ObjectID, patch *models.ProfilePatch) (*models.Profile, error) {
	r.writes++
	return r.Repository.Update(ctx, id, patch)
}

func (r *countingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.writes++
	return r.Repository.Delete(ctx, id)
}

var errBackendDown = errors.New("server selection timeout")

type fixture struct {
	repo        *countingRepo
	profiles    *ProfileService
	friendships *FriendshipService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &countingRepo{Repository: storage.NewMemoryStore()}
	profiles := NewProfileService(repo, security.NewHasher(bcrypt.MinCost))
	profiles.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	return &fixture{
		repo:        repo,
		profiles:    profiles,
		friendships: NewFriendshipService(profiles),
	}
}

type seed struct {
	name, password, dob, address string
	lat, long                    float64
}

var seeds = []seed{
	{"IvanHu", "IvanHuPassword", "1997-09-17", "Singapore Farrer Park", 1.312908, 103.856903},
	{"RydeEngineer", "RydeEngineerPassword", "1992-01-24", "Singapore Anson Road", 1.275926, 103.846099},
	{"FamilyOfIvan", "IvanFamilyPW", "1971-04-21", "Sydney, Hornsby", -33.699612, 151.109878},
	{"FriendOfIvan", "IvanFriendPW", "1998-06-23", "Sydney, Waterloo", -33.899095, 151.207294},
}

func (f *fixture) create(t *testing.T, s seed) *models.Profile {
	t.Helper()

	dob, err := time.Parse(models.DateLayout, s.dob)
	require.NoError(t, err)
	description := "Located near " + s.address
	prof, err := f.profiles.Create(context.Background(), &models.ProfilePatch{
		Name:        &s.name,
		DOB:         &dob,
		Address:     &s.address,
		Lat:         &s.lat,
		Long:        &s.long,
		Description: &description,
	}, s.password)
	require.NoError(t, err)
	return prof
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	all, err := f.profiles.List(context.Background())
	require.NoError(t, err)
	return len(all)
}

func ptr(s string) *string { return &s }
