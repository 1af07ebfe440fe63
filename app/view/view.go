// Package view derives the visible task subset and summary counts from a
// collection and the active filters. Nothing here is stored.
package view

import (
	"strings"

	"taskmaster/app/models"
)

// Filter holds the three filter dimensions. The zero value passes everything.
type Filter struct {
	Status   models.StatusFilter
	Category models.CategoryFilter
	Search   string
}

// Stats are counted over the unfiltered collection.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Favorites int `json:"favorites"`
}

// Pending is the number of tasks not completed.
func (s Stats) Pending() int {
	return s.Total - s.Completed
}

// State is the derived view of a collection.
type State struct {
	Tasks []models.Task `json:"tasks"`
	Stats Stats         `json:"stats"`
}

// Derive filters tasks conjunctively and counts stats over all of them.
// The order of tasks is kept.
func Derive(tasks []models.Task, f Filter) State {
	search := strings.ToLower(f.Search)
	visible := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t, search) {
			visible = append(visible, t)
		}
	}
	return State{Tasks: visible, Stats: Count(tasks)}
}

// Count computes Stats over tasks.
func Count(tasks []models.Task) Stats {
	st := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
		}
		if t.IsFavorite {
			st.Favorites++
		}
	}
	return st
}

// Matches reports whether t passes all three dimensions of f.
func (f Filter) Matches(t models.Task) bool {
	return f.matches(t, strings.ToLower(f.Search))
}

func (f Filter) matches(t models.Task, search string) bool {
	switch f.Status {
	case models.StatusFavorites:
		if !t.IsFavorite {
			return false
		}
	case models.StatusCompleted:
		if !t.Completed {
			return false
		}
	case models.StatusPending:
		if t.Completed {
			return false
		}
	}

	if f.Category != "" && f.Category != models.CategoryAll && models.Category(f.Category) != t.Category {
		return false
	}

	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search)
}
