package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskmaster/app/logging"
	"taskmaster/app/models"
	"taskmaster/app/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances one second on every reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService(t *testing.T) (*TaskService, *store.BlobStore) {
	t.Helper()
	st := store.New(store.NewMemoryKV(), "")
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewTaskService(st, Options{
		NoDelay: true,
		Now:     clock.Now,
		Logger:  logging.Discard(),
	})
	return svc, st
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	task, err := svc.Create(ctx, models.TaskPatch{})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Len(t, task.ID, idSize)
	assert.Equal(t, DefaultTitle, task.Title)
	assert.Equal(t, models.CategoryPersonal, task.Category)
	assert.False(t, task.IsFavorite)
	assert.False(t, task.Completed)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	task, err = svc.Create(ctx, models.TaskPatch{
		Title:       models.Ptr("Deploy service"),
		Description: models.Ptr("roll out"),
		Category:    models.Ptr(models.CategoryWork),
		IsFavorite:  models.Ptr(true),
		Completed:   models.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Deploy service", task.Title)
	assert.Equal(t, "roll out", task.Description)
	assert.Equal(t, models.CategoryWork, task.Category)
	assert.True(t, task.IsFavorite)
	assert.True(t, task.Completed)
}

func TestCreateAppendsUniqueID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var created []string
	for i := 0; i < 20; i++ {
		before, err := svc.GetAll(ctx)
		require.NoError(t, err)

		task, err := svc.Create(ctx, models.TaskPatch{Title: models.Ptr(fmt.Sprintf("task %d", i))})
		require.NoError(t, err)
		assert.NotContains(t, ids(before), task.ID)

		after, err := svc.GetAll(ctx)
		require.NoError(t, err)
		count := 0
		for _, id := range ids(after) {
			if id == task.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
		created = append(created, task.ID)
	}

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, ids(all), "new tasks go to the end")
}

func TestCreateRegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryKV(), "")
	next := []string{"dup", "dup", "fresh"}
	svc := NewTaskService(st, Options{
		NoDelay: true,
		Logger:  logging.Discard(),
		NewID: func() (string, error) {
			id := next[0]
			next = next[1:]
			return id, nil
		},
	})

	first, err := svc.Create(ctx, models.TaskPatch{})
	require.NoError(t, err)
	second, err := svc.Create(ctx, models.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), models.TaskPatch{Category: models.Ptr(models.Category("Errands"))})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestUpdateMergesAndBumps(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	task, err := svc.Create(ctx, models.TaskPatch{
		Title:       models.Ptr("Draft"),
		Description: models.Ptr("keep me"),
	})
	require.NoError(t, err)

	patch := models.TaskPatch{
		Title:     models.Ptr("Final"),
		Category:  models.Ptr(models.CategoryUrgent),
		Completed: models.Ptr(true),
	}
	updated, err := svc.Update(ctx, task.ID, patch)
	require.NoError(t, err)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, updated, got)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, models.CategoryUrgent, got.Category)
	assert.True(t, got.Completed)
	assert.Equal(t, "keep me", got.Description)
	assert.Equal(t, task.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(task.UpdatedAt))
	assert.False(t, got.CreatedAt.After(got.UpdatedAt))
}

func TestUpdateNotFound(t *testing.T) {
	svc, st := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", models.TaskPatch{Title: models.Ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUpdatedAtStrictlyIncreasesOnFrozenClock(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewTaskService(store.New(store.NewMemoryKV(), ""), Options{
		NoDelay: true,
		Now:     func() time.Time { return frozen },
		Logger:  logging.Discard(),
	})

	task, err := svc.Create(ctx, models.TaskPatch{})
	require.NoError(t, err)
	prev := task.UpdatedAt
	for i := 0; i < 3; i++ {
		task, err = svc.ToggleFavorite(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, task.UpdatedAt.After(prev))
		prev = task.UpdatedAt
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.Create(ctx, models.TaskPatch{Title: models.Ptr("a")})
	require.NoError(t, err)
	b, err := svc.Create(ctx, models.TaskPatch{Title: models.Ptr("b")})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, a.ID))
	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(all))

	// removing again is a no-op
	require.NoError(t, svc.Remove(ctx, a.ID))
	again, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestToggleFavoriteTwice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	task, err := svc.Create(ctx, models.TaskPatch{})
	require.NoError(t, err)

	once, err := svc.ToggleFavorite(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, once.IsFavorite)
	assert.True(t, once.UpdatedAt.After(task.UpdatedAt))

	twice, err := svc.ToggleFavorite(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.IsFavorite, twice.IsFavorite)
	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))

	_, err = svc.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentWritesDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var created []models.Task
	for i := 0; i < 10; i++ {
		task, err := svc.Create(ctx, models.TaskPatch{})
		require.NoError(t, err)
		created = append(created, task)
	}

	var wg sync.WaitGroup
	for _, task := range created {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.ToggleFavorite(ctx, id)
			assert.NoError(t, err)
		}(task.ID)
	}
	wg.Wait()

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	for _, task := range all {
		assert.True(t, task.IsFavorite, task.ID)
	}
}

func TestLatencyHonorsContext(t *testing.T) {
	svc := NewTaskService(store.New(store.NewMemoryKV(), ""), Options{
		ReadDelay: time.Hour,
		Logger:    logging.Discard(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.GetAll(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommittedWriteSurvivesCancelledLatency(t *testing.T) {
	st := store.New(store.NewMemoryKV(), "")
	svc := NewTaskService(st, Options{
		ReadDelay:  time.Nanosecond,
		WriteDelay: time.Hour,
		Logger:     logging.Discard(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	task, err := svc.Create(ctx, models.TaskPatch{Title: models.Ptr("Ship it")})
	require.NoError(t, err)
	assert.Equal(t, "Ship it", task.Title)

	stored, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, task, stored[0])

	// a ctx that is already done is refused before anything is written
	_, err = svc.Update(ctx, task.ID, models.TaskPatch{Completed: models.Ptr(true)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	stored, err = st.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, stored[0].Completed)
}

func TestStorageFailurePropagates(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, store.DefaultKey, []byte("garbage")))
	svc := NewTaskService(store.New(kv, ""), Options{NoDelay: true, Logger: logging.Discard()})

	_, err := svc.GetAll(ctx)
	assert.True(t, errors.Is(err, store.ErrStorage))
	_, err = svc.Create(ctx, models.TaskPatch{})
	assert.ErrorIs(t, err, store.ErrStorage)
}
