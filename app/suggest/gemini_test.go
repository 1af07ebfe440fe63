package suggest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"taskmaster/app/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini answers every generateContent call with text as the model output.
func fakeGemini(t *testing.T, status int, text string) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		lastBody.Store(string(body))
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			http.Error(w, `{"error":{"code":500,"message":"boom"}}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": text}},
					},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &lastBody
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestGemini(t *testing.T, endpoint string) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), GeminiOptions{
		APIKey:   "test-key",
		Endpoint: endpoint + "/",
		Logger:   quietLogger(),
	})
	require.NoError(t, err)
	return g
}

func TestGeminiSubtasks(t *testing.T) {
	srv, calls, body := fakeGemini(t, http.StatusOK, `["Draft outline", " ", "Review with team"]`)
	g := newTestGemini(t, srv.URL)

	got := g.Subtasks(context.Background(), "Write report")
	assert.Equal(t, []string{"Draft outline", "Review with team"}, got)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, body.Load().(string), "Write report")
	assert.Contains(t, body.Load().(string), "application/json")
	assert.Contains(t, body.Load().(string), `"ARRAY"`)
}

func TestGeminiSubtasksFailuresAreEmpty(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, _, _ := fakeGemini(t, http.StatusInternalServerError, "")
		assert.Nil(t, newTestGemini(t, srv.URL).Subtasks(context.Background(), "x"))
	})
	t.Run("malformed json", func(t *testing.T) {
		srv, _, _ := fakeGemini(t, http.StatusOK, "first do this, then that")
		assert.Nil(t, newTestGemini(t, srv.URL).Subtasks(context.Background(), "x"))
	})
	t.Run("empty list", func(t *testing.T) {
		srv, _, _ := fakeGemini(t, http.StatusOK, "[]")
		assert.Nil(t, newTestGemini(t, srv.URL).Subtasks(context.Background(), "x"))
	})
}

func TestGeminiBreakerOpensAfterFailures(t *testing.T) {
	srv, calls, _ := fakeGemini(t, http.StatusInternalServerError, "")
	g := newTestGemini(t, srv.URL)

	for i := 0; i < 5; i++ {
		assert.Nil(t, g.Subtasks(context.Background(), "x"))
	}
	assert.Equal(t, int32(3), calls.Load())

	// the open breaker short-circuits category calls too
	assert.Equal(t, models.CategoryPersonal, g.Category(context.Background(), "Gym", ""))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeminiCategory(t *testing.T) {
	srv, _, _ := fakeGemini(t, http.StatusOK, "health.\n")
	assert.Equal(t, models.CategoryHealth, newTestGemini(t, srv.URL).Category(context.Background(), "Gym", "legs"))

	srv, _, _ = fakeGemini(t, http.StatusOK, "Chores")
	assert.Equal(t, models.CategoryPersonal, newTestGemini(t, srv.URL).Category(context.Background(), "Laundry", ""))

	srv, _, _ = fakeGemini(t, http.StatusInternalServerError, "")
	assert.Equal(t, models.CategoryPersonal, newTestGemini(t, srv.URL).Category(context.Background(), "Laundry", ""))
}

func TestNewWithKeyBuildsGemini(t *testing.T) {
	srv, _, _ := fakeGemini(t, http.StatusOK, `["a"]`)
	s := New(context.Background(), GeminiOptions{APIKey: "k", Endpoint: srv.URL + "/", Logger: quietLogger()})
	g, ok := s.(*Gemini)
	require.True(t, ok)
	assert.Equal(t, DefaultModel, g.model)
	assert.Equal(t, DefaultTimeout, g.timeout)
	assert.Equal(t, []string{"a"}, g.Subtasks(context.Background(), "x"))
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	s := New(context.Background(), GeminiOptions{Logger: quietLogger()})
	assert.IsType(t, Disabled{}, s)
	assert.Nil(t, s.Subtasks(context.Background(), "x"))
	assert.Equal(t, models.CategoryPersonal, s.Category(context.Background(), "x", ""))
}
