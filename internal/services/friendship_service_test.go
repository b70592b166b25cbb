package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddFriendIsOneSided(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, seeds[0])
	b := f.create(t, seeds[1])

	updated, err := f.friendships.AddFriend(ctx, a.ID.Hex(), b.ID.Hex(), ptr("IvanHuPassword"))
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{b.ID}, updated.Friends)

	storedB, err := f.profiles.Get(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, storedB.Friends)
}

func TestAddFriendMirroredCallsMakeMutualFriendship(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, seeds[0])
	b := f.create(t, seeds[3])

	_, err := f.friendships.AddFriend(ctx, a.ID.Hex(), b.ID.Hex(), ptr("IvanHuPassword"))
	require.NoError(t, err)
	_, err = f.friendships.AddFriend(ctx, b.ID.Hex(), a.ID.Hex(), ptr("IvanFriendPW"))
	require.NoError(t, err)

	storedA, err := f.profiles.Get(ctx, a.ID.Hex())
	require.NoError(t, err)
	storedB, err := f.profiles.Get(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.True(t, storedA.HasFriend(b.ID))
	assert.True(t, storedB.HasFriend(a.ID))
}

func TestAddFriendKeepsSetSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, seeds[0])
	b := f.create(t, seeds[1])
	c := f.create(t, seeds[2])

	for _, friend := range []string{b.ID.Hex(), c.ID.Hex(), b.ID.Hex()} {
		_, err := f.friendships.AddFriend(ctx, a.ID.Hex(), friend, ptr("IvanHuPassword"))
		require.NoError(t, err)
	}

	stored, err := f.profiles.Get(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{b.ID, c.ID}, stored.Friends)
}

func TestAddFriendFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, seeds[0])
	b := f.create(t, seeds[1])
	writes := f.repo.writes

	tests := []struct {
		name     string
		actor    string
		friend   string
		password *string
		want     error
	}{
		{name: "unknown actor", actor: primitive.NewObjectID().Hex(), friend: b.ID.Hex(), password: ptr("IvanHuPassword"), want: ErrProfileNotFound},
		{name: "malformed actor", actor: "nope", friend: b.ID.Hex(), password: ptr("IvanHuPassword"), want: ErrProfileNotFound},
		{name: "wrong password", actor: a.ID.Hex(), friend: b.ID.Hex(), password: ptr("RydeEngineerPassword"), want: ErrInvalidPassword},
		{name: "missing password", actor: a.ID.Hex(), friend: b.ID.Hex(), password: nil, want: ErrInvalidPassword},
		{name: "unknown friend", actor: a.ID.Hex(), friend: primitive.NewObjectID().Hex(), password: ptr("IvanHuPassword"), want: ErrInvalidFriend},
		{name: "malformed friend", actor: a.ID.Hex(), friend: "ffff", password: ptr("IvanHuPassword"), want: ErrInvalidFriend},
		{name: "self", actor: a.ID.Hex(), friend: a.ID.Hex(), password: ptr("IvanHuPassword"), want: ErrSelfFriendship},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.friendships.AddFriend(ctx, tt.actor, tt.friend, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, writes, f.repo.writes, "rejected adds must not write")
	stored, err := f.profiles.Get(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.Friends)
}

func TestAddFriendWrongPasswordCheckedBeforeFriendLookup(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, seeds[0])

	_, err := f.friendships.AddFriend(context.Background(), a.ID.Hex(), primitive.NewObjectID().Hex(), ptr("wrong"))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestInvalidFriendErrorNamesReference(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, seeds[0])
	missing := primitive.NewObjectID().Hex()

	_, err := f.friendships.AddFriend(context.Background(), a.ID.Hex(), missing, ptr("IvanHuPassword"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}

func TestResolveFriendsFollowsListOrderAndSkipsDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, seeds[0])
	b := f.create(t, seeds[1])
	c := f.create(t, seeds[2])

	_, err := f.friendships.AddFriend(ctx, a.ID.Hex(), c.ID.Hex(), ptr("IvanHuPassword"))
	require.NoError(t, err)
	_, err = f.friendships.AddFriend(ctx, a.ID.Hex(), b.ID.Hex(), ptr("IvanHuPassword"))
	require.NoError(t, err)

	friends, err := f.profiles.Friends(ctx, a.ID.Hex())
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "FamilyOfIvan", friends[0].Name)
	assert.Equal(t, "RydeEngineer", friends[1].Name)

	require.NoError(t, f.profiles.Delete(ctx, c.ID.Hex(), ptr("IvanFamilyPW")))
	friends, err = f.profiles.Friends(ctx, a.ID.Hex())
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "RydeEngineer", friends[0].Name)
}
