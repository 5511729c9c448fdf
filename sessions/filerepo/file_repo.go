// Package filerepo persists session values in a JSON file.
package filerepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/sessions"
)

var _ sessions.Repo = (*FileRepo)(nil)

// FileRepo stores all session values in a single JSON object. Writes go
// to a temporary file which is renamed over the original, so a crash never
// leaves a half-written session behind.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

// New returns a FileRepo writing to path, creating its directory if needed.
func New(path string) (*FileRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filerepo.New MkdirAll: %w", err)
	}
	return &FileRepo{path: path}, nil
}

// Path returns the session file location.
func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return value, nil
}

func (r *FileRepo) Upsert(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		// A corrupt session file is replaced rather than blocking login.
		values = make(map[string]string)
	}
	values[key] = value
	return r.save(values)
}

func (r *FileRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		values = make(map[string]string)
	}
	if _, ok := values[key]; !ok && err == nil {
		return nil
	}
	delete(values, key)
	return r.save(values)
}

func (r *FileRepo) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return values, nil
}

func (r *FileRepo) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tempFile := r.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, r.path); err != nil {
		if removeErr := os.Remove(tempFile); removeErr != nil {
			return fmt.Errorf("failed to rename temp file: %v; additionally failed to remove temp file: %w", err, removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
