package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCategory is returned for a category outside the closed set.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidFilter is returned for an unknown status or category filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidTask is returned when a task fails validation.
	ErrInvalidTask = errors.New("invalid task")
)

// Category is the single category a task belongs to.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryShopping Category = "Shopping"
	CategoryHealth   Category = "Health"
	CategoryUrgent   Category = "Urgent"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryShopping,
	CategoryHealth,
	CategoryUrgent,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against Categories.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Task represents a single to-do item.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	IsFavorite  bool      `json:"isFavorite"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskPatch carries the fields given to a create or update call.
// A nil field was not given.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,notblank"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty" validate:"omitempty,category"`
	IsFavorite  *bool     `json:"isFavorite,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// Apply merges the non-nil fields of p over t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.IsFavorite != nil {
		t.IsFavorite = *p.IsFavorite
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
