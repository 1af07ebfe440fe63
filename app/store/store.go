// Package store persists the whole task collection as one JSON array under a
// single key of a key-value backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskmaster/app/models"
)

// DefaultKey is the key the collection is stored under.
const DefaultKey = "taskmaster_pro_tasks"

var (
	// ErrStorage wraps every failure of the underlying medium.
	ErrStorage = errors.New("storage failure")
	// ErrNoValue is returned by a KV when nothing is stored under a key.
	ErrNoValue = errors.New("no value stored")
)

// KV is the byte-level key-value medium the collection lives in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Store reads and writes the full task collection.
type Store interface {
	Load(ctx context.Context) ([]models.Task, error)
	Save(ctx context.Context, tasks []models.Task) error
}

// BlobStore is a Store keeping the collection as one JSON blob in a KV.
type BlobStore struct {
	kv  KV
	key string
}

// New returns a BlobStore over kv. An empty key selects DefaultKey.
func New(kv KV, key string) *BlobStore {
	if key == "" {
		key = DefaultKey
	}
	return &BlobStore{kv: kv, key: key}
}

// Key returns the key the collection is stored under.
func (s *BlobStore) Key() string {
	return s.key
}

// Load returns the stored collection, or an empty one if nothing is stored.
func (s *BlobStore) Load(ctx context.Context) ([]models.Task, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNoValue) {
		return []models.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrStorage, s.key, err)
	}
	if len(raw) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, s.key, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Save replaces the stored collection with tasks.
func (s *BlobStore) Save(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, s.key, err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStorage, s.key, err)
	}
	return nil
}

// Close releases the underlying KV.
func (s *BlobStore) Close() error {
	return s.kv.Close()
}

// SeedTasks returns the two example records written into an empty store.
func SeedTasks(now time.Time) []models.Task {
	now = now.UTC()
	return []models.Task{
		{
			ID:          "1",
			Title:       "Design UI for TaskMaster",
			Description: "Create a modern, responsive layout using Tailwind CSS.",
			Category:    models.CategoryWork,
			IsFavorite:  true,
			Completed:   false,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "2",
			Title:       "Buy Groceries",
			Description: "Milk, eggs, and sourdough bread.",
			Category:    models.CategoryShopping,
			IsFavorite:  false,
			Completed:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Seed writes SeedTasks into s if its collection is empty.
// It reports whether anything was written.
func Seed(ctx context.Context, s Store, now time.Time) (bool, error) {
	tasks, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(tasks) > 0 {
		return false, nil
	}
	if err := s.Save(ctx, SeedTasks(now)); err != nil {
		return false, err
	}
	return true, nil
}
