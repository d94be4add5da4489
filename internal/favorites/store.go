// Package favorites persists the device/package pairs a user diagnoses
// often, so the CLI and API can offer them back without re-typing serials.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// storeFileMode is the permission for the persisted favorites file
const storeFileMode = 0o600

// Favorite is one remembered device/package pair
type Favorite struct {
	// DeviceID is the device serial
	DeviceID string `json:"device_id"`
	// PackageName is the Android application package
	PackageName string `json:"package_name"`
	// Label is an optional display name
	Label string `json:"label,omitempty"`
	// AddedAt is when the favorite was stored
	AddedAt time.Time `json:"added_at"`
}

// Store is a JSON-file backed favorites list. Safe for concurrent use.
type Store struct {
	path string

	mu    sync.Mutex
	items []Favorite
}

// NewStore opens or creates a favorites store at the given path
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading favorites store %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.items); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, path, err)
		}
	}

	return s, nil
}

// List returns all favorites in insertion order
func (s *Store) List() []Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Favorite, len(s.items))
	copy(out, s.items)

	return out
}

// Add stores a favorite, replacing any existing entry for the same
// device/package pair, and persists the list.
func (s *Store) Add(fav Favorite) error {
	if fav.DeviceID == "" || fav.PackageName == "" {
		return ErrIncompleteFavorite
	}

	if fav.AddedAt.IsZero() {
		fav.AddedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false

	for i, existing := range s.items {
		if existing.DeviceID == fav.DeviceID && existing.PackageName == fav.PackageName {
			s.items[i] = fav
			replaced = true

			break
		}
	}

	if !replaced {
		s.items = append(s.items, fav)
	}

	return s.persist()
}

// Remove deletes the favorite for the device/package pair, reporting whether
// an entry existed, and persists the list.
func (s *Store) Remove(deviceID, packageName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing.DeviceID == deviceID && existing.PackageName == packageName {
			s.items = append(s.items[:i], s.items[i+1:]...)

			return true, s.persist()
		}
	}

	return false, nil
}

// persist writes the list atomically: temp file in the same directory, then
// rename. Callers hold the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".favorites-*.json")
	if err != nil {
		return fmt.Errorf("creating temp favorites file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck // already failing
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup

		return fmt.Errorf("writing favorites: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("closing favorites file: %w", err)
	}

	if err := os.Chmod(tmpName, storeFileMode); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("setting favorites file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("replacing favorites store: %w", err)
	}

	return nil
}
