package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/geoprofiles/backend/internal/models"
)

// snapshot is the on-disk layout of a JSONStore file.
type snapshot struct {
	Profiles []*models.Profile `json:"profiles"`
}

// JSONStore persists a snapshot of every profile to a single JSON file so the
// memory backend survives restarts. The file holds password hashes and is
// created with owner-only permissions.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONStore creates a store writing to dataDir/filename, creating dataDir
// if needed.
func NewJSONStore(dataDir, filename string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return &JSONStore{
		filePath: filepath.Join(dataDir, filename),
	}, nil
}

// Path returns the snapshot file location.
func (s *JSONStore) Path() string {
	return s.filePath
}

// Load reads the snapshot. A missing file is an empty snapshot.
func (s *JSONStore) Load() ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.filePath, err)
	}
	return snap.Profiles, nil
}

// Save replaces the snapshot with profiles. It writes a temp file and renames
// it over the old one so readers never see a partial snapshot.
func (s *JSONStore) Save(profiles []*models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tempFile := s.filePath + ".tmp"
	file, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot{Profiles: profiles}); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, s.filePath)
}
