// Package blobstore is the JSON key-value blob collaborator of the pipeline:
// Load(key) returns the stored object or an empty default, Save(key)
// overwrites the whole object. No merge logic lives here.
package blobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Store persists JSON blobs under a root directory, one file per key. Keys
// may contain slashes, which map to subdirectories; every other unsafe rune
// is sanitized.
type Store struct {
	rootDir string
}

// New creates a blob store rooted at rootDir, creating it if needed.
func New(rootDir string) (*Store, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob store root %s: %w", rootDir, err)
	}
	return &Store{rootDir: rootDir}, nil
}

// Load reads the blob for key into value. Returns found=false (and leaves
// value untouched) when no blob exists for the key.
func (store *Store) Load(key string, value any) (found bool, err error) {
	blobJSON, err := os.ReadFile(store.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	if err := json.Unmarshal(blobJSON, value); err != nil {
		return false, fmt.Errorf("failed to parse blob %s: %w", key, err)
	}
	return true, nil
}

// Save writes value as the blob for key, overwriting any previous blob. The
// write is synchronous: when Save returns nil the blob is on disk.
func (store *Store) Save(key string, value any) error {
	blobJSON, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal blob %s: %w", key, err)
	}

	blobPath := store.path(key)
	if err := os.MkdirAll(filepath.Dir(blobPath), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory for %s: %w", key, err)
	}
	if err := os.WriteFile(blobPath, blobJSON, 0644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

var reUnsafeRune = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeKey maps an arbitrary string (an identifier URL, typically) onto a
// filesystem-safe key segment.
func SanitizeKey(raw string) string {
	sanitized := reUnsafeRune.ReplaceAllString(raw, "_")
	return strings.Trim(sanitized, "_")
}

// path maps a key onto its blob file path.
func (store *Store) path(key string) string {
	segments := strings.Split(key, "/")
	for segmentIndex, segment := range segments {
		segments[segmentIndex] = SanitizeKey(segment)
	}
	return filepath.Join(store.rootDir, filepath.Join(segments...)+".json")
}
