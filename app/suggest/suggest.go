// Package suggest asks a generative model for subtasks and categories.
//
// A Suggester never fails: every error is logged and turned into an empty
// result, which callers must read as "no suggestions available".
package suggest

import (
	"context"

	"taskmaster/app/models"
)

// Suggester is the AI subtask-suggestion collaborator.
type Suggester interface {
	// Subtasks returns suggested subtask descriptions for a task title,
	// or nil when none are available.
	Subtasks(ctx context.Context, title string) []string
	// Category picks the best category for a task, falling back to
	// models.CategoryPersonal.
	Category(ctx context.Context, title, description string) models.Category
}

// Disabled is the Suggester used when no API key is configured.
type Disabled struct{}

func (Disabled) Subtasks(context.Context, string) []string { return nil }

func (Disabled) Category(context.Context, string, string) models.Category {
	return models.CategoryPersonal
}
