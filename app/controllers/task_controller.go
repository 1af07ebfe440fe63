package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskmaster/app/models"
	"taskmaster/app/services"
	"taskmaster/app/validation"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	Service services.API
	Log     logrus.FieldLogger
}

// NewTaskController creates a new TaskController.
func NewTaskController(service services.API, log logrus.FieldLogger) *TaskController {
	return &TaskController{Service: service, Log: log}
}

// GetTasks handles GET /tasks.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Service.GetAll(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validation.Patch(patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := c.Service.Create(r.Context(), patch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PATCH and PUT /tasks/{taskID}.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validation.Patch(patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := c.Service.Update(r.Context(), taskID, patch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	if err := c.Service.Remove(r.Context(), taskID); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /tasks/{taskID}/favorite.
func (c *TaskController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	task, err := c.Service.ToggleFavorite(r.Context(), taskID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (c *TaskController) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidCategory), errors.Is(err, models.ErrInvalidTask):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		c.Log.WithError(err).WithField("path", r.URL.Path).Error("task request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
