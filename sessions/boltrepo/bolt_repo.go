// Package boltrepo provides a BBolt-backed session repository.
package boltrepo

import (
	"fmt"

	"go.etcd.io/bbolt"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/sessions"
)

var bucketName = []byte("session")

// BoltRepo implements sessions.Repo backed by a BBolt database.
type BoltRepo struct {
	db *bbolt.DB
}

var _ sessions.Repo = (*BoltRepo)(nil)

// New returns a Repo backed by the given BBolt database.
func New(db *bbolt.DB) *BoltRepo {
	return &BoltRepo{db: db}
}

// NewFromFile opens a BBolt database at the given path and returns a new Repo.
func NewFromFile(path string, options *bbolt.Options) (*BoltRepo, error) {
	db, err := bbolt.Open(path, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return New(db), nil
}

// Close closes the underlying BBolt database.
func (r *BoltRepo) Close() error {
	return r.db.Close()
}

func (r *BoltRepo) Get(key string) (string, error) {
	var value string
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("%s: %w", key, apperrors.ErrNotFound)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s: %w", key, apperrors.ErrNotFound)
		}
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *BoltRepo) Upsert(key, value string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (r *BoltRepo) Delete(key string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}
