package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoprofiles/backend/internal/models"
)

// runRepositoryContract checks the behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("insert assigns id and find returns it", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Insert(ctx, sampleProfile("IvanHu"))
		require.NoError(t, err)
		require.False(t, created.ID.IsZero())

		found, err := repo.Find(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "IvanHu", found.Name)
		assert.Equal(t, "$2a$04$hash", found.PasswordHash)
		assert.True(t, found.DOB.Equal(time.Date(1997, 9, 17, 0, 0, 0, 0, time.UTC)))
		assert.True(t, found.CreatedAt.Equal(created.CreatedAt))
		assert.Equal(t, 1.312908, found.Lat)
		assert.Equal(t, 103.856903, found.Long)
		assert.Empty(t, found.Friends)
	})

	t.Run("find missing returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Find(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find all keeps creation order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		names := []string{"IvanHu", "RydeEngineer", "FamilyOfIvan", "FriendOfIvan"}
		for i, name := range names {
			prof := sampleProfile(name)
			prof.CreatedAt = prof.CreatedAt.Add(time.Duration(i) * time.Second)
			_, err := repo.Insert(ctx, prof)
			require.NoError(t, err)
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, len(names))
		for i, prof := range all {
			assert.Equal(t, names[i], prof.Name)
		}
	})

	t.Run("find all on empty store", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("find by ids preserves requested order and skips missing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.Insert(ctx, sampleProfile("IvanHu"))
		require.NoError(t, err)
		b, err := repo.Insert(ctx, sampleProfile("RydeEngineer"))
		require.NoError(t, err)

		got, err := repo.FindByIDs(ctx, []primitive.ObjectID{b.ID, primitive.NewObjectID(), a.ID})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, b.ID, got[0].ID)
		assert.Equal(t, a.ID, got[1].ID)

		none, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update applies only patched fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Insert(ctx, sampleProfile("IvanHu"))
		require.NoError(t, err)
		friend := primitive.NewObjectID()

		address := "Singapore Novena"
		updated, err := repo.Update(ctx, created.ID, &models.ProfilePatch{
			Address: &address,
			Friends: []primitive.ObjectID{friend},
		})
		require.NoError(t, err)
		assert.Equal(t, "Singapore Novena", updated.Address)
		assert.Equal(t, "IvanHu", updated.Name)
		assert.Equal(t, []primitive.ObjectID{friend}, updated.Friends)

		found, err := repo.Find(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Singapore Novena", found.Address)
		assert.Equal(t, "$2a$04$hash", found.PasswordHash)
		assert.Equal(t, []primitive.ObjectID{friend}, found.Friends)
	})

	t.Run("empty update returns current record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Insert(ctx, sampleProfile("IvanHu"))
		require.NoError(t, err)

		got, err := repo.Update(ctx, created.ID, &models.ProfilePatch{})
		require.NoError(t, err)
		assert.Equal(t, "IvanHu", got.Name)
	})

	t.Run("update missing returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		name := "Nobody"

		_, err := repo.Update(context.Background(), primitive.NewObjectID(), &models.ProfilePatch{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete removes exactly one profile", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.Insert(ctx, sampleProfile("IvanHu"))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, sampleProfile("RydeEngineer"))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, a.ID))
		_, err = repo.Find(ctx, a.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "RydeEngineer", all[0].Name)

		assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)
	})

	t.Run("returned records are independent copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Insert(ctx, sampleProfile("IvanHu"))
		require.NoError(t, err)
		created.Name = "Mutated"
		created.Friends = append(created.Friends, primitive.NewObjectID())

		found, err := repo.Find(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "IvanHu", found.Name)
		assert.Empty(t, found.Friends)
	})
}

func sampleProfile(name string) *models.Profile {
	return &models.Profile{
		Name:         name,
		PasswordHash: "$2a$04$hash",
		DOB:          time.Date(1997, 9, 17, 0, 0, 0, 0, time.UTC),
		Address:      "Singapore Farrer Park",
		Lat:          1.312908,
		Long:         103.856903,
		Description:  "Located in Singapore",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Friends:      []primitive.ObjectID{},
	}
}
