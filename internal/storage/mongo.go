package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geoprofiles/backend/internal/models"
)

// MongoStore keeps profiles in a MongoDB collection, one document per profile.
type MongoStore struct {
	client      *mongo.Client
	db          *mongo.Database
	profilesCol *mongo.Collection
}

// NewMongoStore connects to mongoURI, verifies the connection and prepares the
// profiles collection in dbName.
func NewMongoStore(ctx context.Context, mongoURI, dbName string) (*MongoStore, error) {
	opts := options.Client().ApplyURI(mongoURI)
	if strings.HasPrefix(mongoURI, "mongodb+srv://") {
		// Atlas occasionally fails TLS negotiation unless pinned to TLS 1.2.
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	col := db.Collection("profiles")

	// Best-effort index backing creation-order listing.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	})

	return &MongoStore{
		client:      client,
		db:          db,
		profilesCol: col,
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Find(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var prof models.Profile
	if err := s.profilesCol.FindOne(ctx, bson.M{"_id": id}).Decode(&prof); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prof, nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]*models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{}, opts)
}

func (s *MongoStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}
	profiles, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	found := make(map[primitive.ObjectID]*models.Profile, len(profiles))
	for _, prof := range profiles {
		found[prof.ID] = prof
	}
	return orderByIDs(ids, found), nil
}

func (s *MongoStore) Insert(ctx context.Context, prof *models.Profile) (*models.Profile, error) {
	stored := clone(prof)
	stored.ID = primitive.NewObjectID()

	if _, err := s.profilesCol.InsertOne(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *MongoStore) Update(ctx context.Context, id primitive.ObjectID, patch *models.ProfilePatch) (*models.Profile, error) {
	set := patchToSet(patch)
	if len(set) == 0 {
		return s.Find(ctx, id)
	}

	var prof models.Profile
	err := s.profilesCol.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&prof)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prof, nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.profilesCol.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.Profile, error) {
	cur, err := s.profilesCol.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	profiles := make([]*models.Profile, 0)
	for cur.Next(ctx) {
		var prof models.Profile
		if err := cur.Decode(&prof); err != nil {
			return nil, err
		}
		profiles = append(profiles, &prof)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func patchToSet(patch *models.ProfilePatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.DOB != nil {
		set["dob"] = *patch.DOB
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Lat != nil {
		set["lat"] = *patch.Lat
	}
	if patch.Long != nil {
		set["long"] = *patch.Long
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Friends != nil {
		set["friends"] = patch.Friends
	}
	return set
}
