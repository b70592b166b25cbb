package storage

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoprofiles/backend/internal/models"
)

// MemoryStore keeps profiles in process memory. When backed by a JSONStore
// every successful mutation is written through to disk.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[primitive.ObjectID]*models.Profile
	order    []primitive.ObjectID
	file     *JSONStore
}

// NewMemoryStore returns an empty store with no persistence.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[primitive.ObjectID]*models.Profile),
	}
}

// NewPersistentMemoryStore returns a store loaded from file that saves back to
// it after every mutation.
func NewPersistentMemoryStore(file *JSONStore) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.file = file

	profiles, err := file.Load()
	if err != nil {
		return nil, err
	}
	for _, prof := range profiles {
		if _, dup := s.profiles[prof.ID]; dup {
			continue
		}
		s.profiles[prof.ID] = clone(prof)
		s.order = append(s.order, prof.ID)
	}
	return s, nil
}

func (s *MemoryStore) Find(_ context.Context, id primitive.ObjectID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prof, exists := s.profiles[id]
	if !exists {
		return nil, ErrNotFound
	}
	return clone(prof), nil
}

func (s *MemoryStore) FindAll(_ context.Context) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(), nil
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[primitive.ObjectID]*models.Profile, len(ids))
	for _, id := range ids {
		if prof, exists := s.profiles[id]; exists {
			found[id] = clone(prof)
		}
	}
	return orderByIDs(ids, found), nil
}

func (s *MemoryStore) Insert(_ context.Context, prof *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(prof)
	stored.ID = primitive.NewObjectID()

	s.profiles[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	if err := s.persistLocked(); err != nil {
		delete(s.profiles, stored.ID)
		s.order = s.order[:len(s.order)-1]
		return nil, err
	}
	return clone(stored), nil
}

func (s *MemoryStore) Update(_ context.Context, id primitive.ObjectID, patch *models.ProfilePatch) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, exists := s.profiles[id]
	if !exists {
		return nil, ErrNotFound
	}

	updated := clone(prof)
	patch.Apply(updated)
	s.profiles[id] = updated
	if err := s.persistLocked(); err != nil {
		s.profiles[id] = prof
		return nil, err
	}
	return clone(updated), nil
}

func (s *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, exists := s.profiles[id]
	if !exists {
		return ErrNotFound
	}

	delete(s.profiles, id)
	prevOrder := s.order
	s.order = make([]primitive.ObjectID, 0, len(prevOrder))
	for _, other := range prevOrder {
		if other != id {
			s.order = append(s.order, other)
		}
	}
	if err := s.persistLocked(); err != nil {
		s.profiles[id] = prof
		s.order = prevOrder
		return err
	}
	return nil
}

func (s *MemoryStore) Close(_ context.Context) error {
	if s.file == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked()
}

func (s *MemoryStore) snapshotLocked() []*models.Profile {
	out := make([]*models.Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.profiles[id]))
	}
	return out
}

func (s *MemoryStore) persistLocked() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Save(s.snapshotLocked()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
