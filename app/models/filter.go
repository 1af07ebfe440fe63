package models

import (
	"fmt"
	"strings"
)

// StatusFilter selects tasks by their flags.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusFavorites StatusFilter = "favorites"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// ParseStatusFilter accepts the four filter names, case-insensitively.
// An empty string means StatusAll.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusFavorites, StatusCompleted, StatusPending:
		return f, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrInvalidFilter, s)
	}
}

// CategoryFilter is either a Category or CategoryAll.
type CategoryFilter string

// CategoryAll passes every category.
const CategoryAll CategoryFilter = "All"

// ParseCategoryFilter accepts "All" or a category name.
// An empty string means CategoryAll.
func ParseCategoryFilter(s string) (CategoryFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(CategoryAll)) {
		return CategoryAll, nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return "", fmt.Errorf("%w: category %q", ErrInvalidFilter, s)
	}
	return CategoryFilter(c), nil
}
