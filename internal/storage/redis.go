package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoprofiles/backend/internal/models"
)

const defaultRedisPrefix = "geoprofiles"

// RedisStore keeps each profile as a JSON string under <prefix>:profile:<id>
// and the creation order in the sorted set <prefix>:profiles.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix selects the default.
func NewRedisStore(client *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore parses redisURL, connects and verifies the connection.
func OpenRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, ""), nil
}

func (s *RedisStore) Close(_ context.Context) error {
	return s.client.Close()
}

func (s *RedisStore) Find(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	raw, err := s.client.Get(ctx, s.profileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return decodeProfile(raw)
}

func (s *RedisStore) FindAll(ctx context.Context) ([]*models.Profile, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(members))
	for _, m := range members {
		id, err := primitive.ObjectIDFromHex(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt profile index entry %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return s.FindByIDs(ctx, ids)
}

func (s *RedisStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.profileKey(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}

	out := make([]*models.Profile, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		prof, err := decodeProfile([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, prof)
	}
	return out, nil
}

func (s *RedisStore) Insert(ctx context.Context, prof *models.Profile) (*models.Profile, error) {
	stored := clone(prof)
	stored.ID = primitive.NewObjectID()

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("next profile sequence: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.profileKey(stored.ID), raw, 0)
		pipe.ZAdd(ctx, s.indexKey(), goredis.Z{Score: float64(seq), Member: stored.ID.Hex()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return stored, nil
}

func (s *RedisStore) Update(ctx context.Context, id primitive.ObjectID, patch *models.ProfilePatch) (*models.Profile, error) {
	prof, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return prof, nil
	}

	patch.Apply(prof)
	raw, err := json.Marshal(prof)
	if err != nil {
		return nil, err
	}
	// XX keeps a concurrent delete from being resurrected.
	ok, err := s.client.SetXX(ctx, s.profileKey(id), raw, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return prof, nil
}

func (s *RedisStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	var del *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, s.profileKey(id))
		pipe.ZRem(ctx, s.indexKey(), id.Hex())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) profileKey(id primitive.ObjectID) string {
	return s.prefix + ":profile:" + id.Hex()
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":profiles"
}

func (s *RedisStore) seqKey() string {
	return s.prefix + ":profiles:seq"
}

func decodeProfile(raw []byte) (*models.Profile, error) {
	var prof models.Profile
	if err := json.Unmarshal(raw, &prof); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &prof, nil
}
