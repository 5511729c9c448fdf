package fakesessionrepo

import (
	"sync"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps session values in memory only.
type FakeSessionRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		values: make(map[string]string),
	}
}

func (sr *FakeSessionRepo) Get(key string) (string, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	value, ok := sr.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return value, nil
}

func (sr *FakeSessionRepo) Upsert(key, value string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.values[key] = value
	return nil
}

func (sr *FakeSessionRepo) Delete(key string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	delete(sr.values, key)
	return nil
}

// Len returns the number of stored values.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.values)
}
