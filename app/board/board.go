// Package board holds the UI-side state: an in-memory copy of the collection
// and the active filters. The copy changes only through values returned by
// the access API, or through an optimistic edit that is re-synchronized from
// the API when the request fails.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskmaster/app/models"
	"taskmaster/app/services"
	"taskmaster/app/suggest"
	"taskmaster/app/validation"
	"taskmaster/app/view"

	"github.com/sirupsen/logrus"
)

// Board owns the in-memory task list and filter state.
type Board struct {
	api       services.API
	suggester suggest.Suggester
	log       logrus.FieldLogger

	mu     sync.Mutex
	tasks  []models.Task
	filter view.Filter
}

// New returns an empty board. Call Refresh to load the collection.
func New(api services.API, suggester suggest.Suggester, log logrus.FieldLogger) *Board {
	if suggester == nil {
		suggester = suggest.Disabled{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Board{
		api:       api,
		suggester: suggester,
		log:       log,
		tasks:     []models.Task{},
		filter:    view.Filter{Status: models.StatusAll, Category: models.CategoryAll},
	}
}

// Refresh replaces the local copy with the full collection from the API.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()
	return nil
}

// Tasks returns a copy of the local collection.
func (b *Board) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Task(nil), b.tasks...)
}

// Task looks a task up in the local copy.
func (b *Board) Task(id string) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := indexOf(b.tasks, id); i >= 0 {
		return b.tasks[i], true
	}
	return models.Task{}, false
}

// Filter returns the active filters.
func (b *Board) Filter() view.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// SetStatus sets the status filter.
func (b *Board) SetStatus(s models.StatusFilter) {
	b.mu.Lock()
	b.filter.Status = s
	b.mu.Unlock()
}

// SetCategory sets the category filter.
func (b *Board) SetCategory(c models.CategoryFilter) {
	b.mu.Lock()
	b.filter.Category = c
	b.mu.Unlock()
}

// SetSearch sets the search text matched against title and description.
func (b *Board) SetSearch(q string) {
	b.mu.Lock()
	b.filter.Search = q
	b.mu.Unlock()
}

// View derives the visible tasks and stats from the local copy.
func (b *Board) View() view.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return view.Derive(b.tasks, b.filter)
}

// Create validates patch, creates the task and puts it first in the local copy.
func (b *Board) Create(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	if err := validation.Creation(patch); err != nil {
		return models.Task{}, err
	}
	task, err := b.api.Create(ctx, patch)
	if err != nil {
		return models.Task{}, err
	}
	b.mu.Lock()
	b.tasks = append([]models.Task{task}, b.tasks...)
	b.mu.Unlock()
	return task, nil
}

// Update applies patch through the API and stores the confirmed record.
func (b *Board) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := validation.Patch(patch); err != nil {
		return models.Task{}, err
	}
	task, err := b.api.Update(ctx, id, patch)
	if err != nil {
		return models.Task{}, err
	}
	b.replace(task)
	return task, nil
}

// ToggleFavorite flips the favorite flag through the API.
func (b *Board) ToggleFavorite(ctx context.Context, id string) (models.Task, error) {
	task, err := b.api.ToggleFavorite(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	b.replace(task)
	return task, nil
}

// ToggleCompleted flips the completed flag locally first, then through the
// API. A failed request re-synchronizes the whole collection.
func (b *Board) ToggleCompleted(ctx context.Context, id string) error {
	current, ok := b.Task(id)
	if !ok {
		return fmt.Errorf("%w: %s", services.ErrNotFound, id)
	}
	completed := !current.Completed

	return b.optimistic(ctx,
		func(tasks []models.Task) []models.Task {
			if i := indexOf(tasks, id); i >= 0 {
				tasks[i].Completed = completed
			}
			return tasks
		},
		func(ctx context.Context) error {
			task, err := b.api.Update(ctx, id, models.TaskPatch{Completed: &completed})
			if err != nil {
				return err
			}
			b.replace(task)
			return nil
		},
	)
}

// Remove drops the task locally first, then through the API. A failed
// request re-synchronizes the whole collection.
func (b *Board) Remove(ctx context.Context, id string) error {
	return b.optimistic(ctx,
		func(tasks []models.Task) []models.Task {
			kept := make([]models.Task, 0, len(tasks))
			for _, t := range tasks {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			return kept
		},
		func(ctx context.Context) error {
			return b.api.Remove(ctx, id)
		},
	)
}

// optimistic applies a local edit, issues request and, if it fails, reloads
// the collection from the API. The request's error is returned either way.
func (b *Board) optimistic(ctx context.Context, apply func([]models.Task) []models.Task, request func(context.Context) error) error {
	b.mu.Lock()
	b.tasks = apply(append([]models.Task(nil), b.tasks...))
	b.mu.Unlock()

	err := request(ctx)
	if err == nil {
		return nil
	}
	b.log.WithError(err).Warn("optimistic update failed, re-synchronizing")
	if rerr := b.Refresh(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

func (b *Board) replace(task models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := indexOf(b.tasks, task.ID); i >= 0 {
		b.tasks[i] = task
	}
}

// Suggestion is the result of asking the AI collaborator about a task.
type Suggestion struct {
	Title    string
	Subtasks []string
}

// Available is false when the collaborator had nothing to offer.
func (s Suggestion) Available() bool {
	return len(s.Subtasks) > 0
}

// Suggest asks for subtasks of the task with the given id.
func (b *Board) Suggest(ctx context.Context, id string) (Suggestion, error) {
	task, ok := b.Task(id)
	if !ok {
		return Suggestion{}, fmt.Errorf("%w: %s", services.ErrNotFound, id)
	}
	return Suggestion{
		Title:    task.Title,
		Subtasks: b.suggester.Subtasks(ctx, task.Title),
	}, nil
}

// SuggestCategory asks which category fits a title and description.
func (b *Board) SuggestCategory(ctx context.Context, title, description string) models.Category {
	return b.suggester.Category(ctx, title, description)
}

func indexOf(tasks []models.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
