package controllers

import (
	"encoding/json"
	"net/http"

	"taskmaster/app/models"
	"taskmaster/app/suggest"
	"taskmaster/app/validation"
)

// SuggestController exposes the AI suggestion collaborator.
type SuggestController struct {
	Suggester suggest.Suggester
}

// NewSuggestController creates a new SuggestController.
func NewSuggestController(s suggest.Suggester) *SuggestController {
	return &SuggestController{Suggester: s}
}

// SubtasksRequest is the body of POST /suggestions/subtasks.
type SubtasksRequest struct {
	Title string `json:"title" validate:"notblank"`
}

// SubtasksResponse always carries a list, empty when nothing was suggested.
type SubtasksResponse struct {
	Subtasks []string `json:"subtasks"`
}

// CategoryRequest is the body of POST /suggestions/category.
type CategoryRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description"`
}

// CategoryResponse carries the suggested category.
type CategoryResponse struct {
	Category models.Category `json:"category"`
}

// Subtasks handles POST /suggestions/subtasks.
func (c *SuggestController) Subtasks(w http.ResponseWriter, r *http.Request) {
	var req SubtasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subtasks := c.Suggester.Subtasks(r.Context(), req.Title)
	if subtasks == nil {
		subtasks = []string{}
	}
	writeJSON(w, http.StatusOK, SubtasksResponse{Subtasks: subtasks})
}

// Category handles POST /suggestions/category.
func (c *SuggestController) Category(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validation.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := c.Suggester.Category(r.Context(), req.Title, req.Description)
	writeJSON(w, http.StatusOK, CategoryResponse{Category: category})
}
