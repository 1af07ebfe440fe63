package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskmaster/app/models"
	"taskmaster/app/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultReadDelay is the simulated latency of GetAll.
	DefaultReadDelay = 500 * time.Millisecond
	// DefaultWriteDelay is the simulated latency of every write.
	DefaultWriteDelay = 300 * time.Millisecond

	// DefaultTitle is given to tasks created without a title.
	DefaultTitle = "Untitled Task"

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idSize     = 7
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// API is the access boundary the UI layer calls through.
type API interface {
	GetAll(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, patch models.TaskPatch) (models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	Remove(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (models.Task, error)
}

// Options tunes a TaskService. Zero values select the defaults.
type Options struct {
	ReadDelay  time.Duration
	WriteDelay time.Duration
	// NoDelay disables the simulated latency altogether.
	NoDelay bool
	Now     func() time.Time
	NewID   func() (string, error)
	Logger  logrus.FieldLogger
}

// TaskService handles task-related operations over a store.
type TaskService struct {
	store      store.Store
	readDelay  time.Duration
	writeDelay time.Duration
	now        func() time.Time
	newID      func() (string, error)
	log        logrus.FieldLogger

	// mu serializes read-modify-write cycles so concurrent writes
	// cannot overwrite each other.
	mu sync.Mutex
}

var _ API = (*TaskService)(nil)

// NewTaskService creates a new instance of TaskService.
func NewTaskService(s store.Store, opts Options) *TaskService {
	svc := &TaskService{
		store:      s,
		readDelay:  opts.ReadDelay,
		writeDelay: opts.WriteDelay,
		now:        opts.Now,
		newID:      opts.NewID,
		log:        opts.Logger,
	}
	if svc.readDelay == 0 {
		svc.readDelay = DefaultReadDelay
	}
	if svc.writeDelay == 0 {
		svc.writeDelay = DefaultWriteDelay
	}
	if opts.NoDelay {
		svc.readDelay, svc.writeDelay = 0, 0
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = func() (string, error) {
			return gonanoid.Generate(idAlphabet, idSize)
		}
	}
	if svc.log == nil {
		svc.log = logrus.StandardLogger()
	}
	return svc
}

// GetAll returns the full collection in stored order.
func (s *TaskService) GetAll(ctx context.Context) ([]models.Task, error) {
	if err := wait(ctx, s.readDelay); err != nil {
		return nil, err
	}
	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.WithError(err).Error("load tasks")
		return nil, err
	}
	return tasks, nil
}

// Create appends a new task built from patch and returns it.
func (s *TaskService) Create(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidCategory, *patch.Category)
	}

	task, err := s.mutate(ctx, func(tasks []models.Task) ([]models.Task, models.Task, error) {
		id, err := s.uniqueID(tasks)
		if err != nil {
			return nil, models.Task{}, err
		}
		now := s.now().UTC()
		task := models.Task{
			ID:        id,
			Title:     DefaultTitle,
			Category:  models.CategoryPersonal,
			CreatedAt: now,
			UpdatedAt: now,
		}
		patch.Apply(&task)
		return append(tasks, task), task, nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.log.WithFields(logrus.Fields{"id": task.ID, "category": task.Category}).Debug("task created")
	s.settle(ctx)
	return task, nil
}

// Update merges patch over the task with the given id and returns the result.
func (s *TaskService) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidCategory, *patch.Category)
	}

	task, err := s.mutate(ctx, func(tasks []models.Task) ([]models.Task, models.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		patch.Apply(&tasks[i])
		tasks[i].UpdatedAt = s.bump(tasks[i].UpdatedAt)
		return tasks, tasks[i], nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.log.WithField("id", id).Debug("task updated")
	s.settle(ctx)
	return task, nil
}

// Remove deletes the task with the given id. An unknown id is not an error.
func (s *TaskService) Remove(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func(tasks []models.Task) ([]models.Task, models.Task, error) {
		kept := tasks[:0]
		for _, t := range tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		return kept, models.Task{}, nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("id", id).Debug("task removed")
	s.settle(ctx)
	return nil
}

// ToggleFavorite flips the favorite flag of the task with the given id.
func (s *TaskService) ToggleFavorite(ctx context.Context, id string) (models.Task, error) {
	task, err := s.mutate(ctx, func(tasks []models.Task) ([]models.Task, models.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		tasks[i].IsFavorite = !tasks[i].IsFavorite
		tasks[i].UpdatedAt = s.bump(tasks[i].UpdatedAt)
		return tasks, tasks[i], nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.log.WithFields(logrus.Fields{"id": id, "favorite": task.IsFavorite}).Debug("favorite toggled")
	s.settle(ctx)
	return task, nil
}

// mutate runs one load-modify-save cycle under the write lock.
func (s *TaskService) mutate(ctx context.Context, fn func([]models.Task) ([]models.Task, models.Task, error)) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.WithError(err).Error("load tasks")
		return models.Task{}, err
	}
	tasks, task, err := fn(tasks)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.store.Save(ctx, tasks); err != nil {
		s.log.WithError(err).Error("save tasks")
		return models.Task{}, err
	}
	return task, nil
}

// settle waits out the write latency after a write has been persisted.
// The write is already committed, so a done ctx only cuts the wait short.
func (s *TaskService) settle(ctx context.Context) {
	_ = wait(ctx, s.writeDelay)
}

// bump returns the current time, forced strictly after prev.
func (s *TaskService) bump(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func (s *TaskService) uniqueID(tasks []models.Task) (string, error) {
	for {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		if indexOf(tasks, id) < 0 {
			return id, nil
		}
	}
}

func indexOf(tasks []models.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
