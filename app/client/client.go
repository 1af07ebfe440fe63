// Package client talks to a running taskmaster server. It implements the same
// access API as the local service, so callers can switch between them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskmaster/app/controllers"
	"taskmaster/app/models"
	"taskmaster/app/services"
	"taskmaster/app/suggest"

	"github.com/sirupsen/logrus"
)

// ErrServer is returned for any unexpected response from the server.
var ErrServer = errors.New("server error")

// Client is an HTTP implementation of services.API and suggest.Suggester.
type Client struct {
	base string
	http *http.Client
	log  logrus.FieldLogger
}

var (
	_ services.API      = (*Client)(nil)
	_ suggest.Suggester = (*Client)(nil)
)

// New returns a client for the server at baseURL.
func New(baseURL string, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

// GetAll calls GET /tasks.
func (c *Client) GetAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Create calls POST /tasks.
func (c *Client) Create(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/tasks", patch, &task)
	return task, err
}

// Update calls PATCH /tasks/{id}.
func (c *Client) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch, &task)
	return task, err
}

// Remove calls DELETE /tasks/{id}.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// ToggleFavorite calls POST /tasks/{id}/favorite.
func (c *Client) ToggleFavorite(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/favorite", nil, &task)
	return task, err
}

// Subtasks calls POST /suggestions/subtasks. Failures yield nil.
func (c *Client) Subtasks(ctx context.Context, title string) []string {
	var resp controllers.SubtasksResponse
	if err := c.do(ctx, http.MethodPost, "/suggestions/subtasks", controllers.SubtasksRequest{Title: title}, &resp); err != nil {
		c.log.WithError(err).Warn("subtask suggestion failed")
		return nil
	}
	if len(resp.Subtasks) == 0 {
		return nil
	}
	return resp.Subtasks
}

// Category calls POST /suggestions/category. Failures yield Personal.
func (c *Client) Category(ctx context.Context, title, description string) models.Category {
	var resp controllers.CategoryResponse
	req := controllers.CategoryRequest{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/suggestions/category", req, &resp); err != nil {
		c.log.WithError(err).Warn("category suggestion failed")
		return models.CategoryPersonal
	}
	if !resp.Category.Valid() {
		return models.CategoryPersonal
	}
	return resp.Category
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		text := strings.TrimSpace(string(msg))
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", services.ErrNotFound, text)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", models.ErrInvalidTask, text)
		default:
			return fmt.Errorf("%w: %s %s: %d %s", ErrServer, method, path, resp.StatusCode, text)
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrServer, err)
	}
	return nil
}
