package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaq/job"
)

func testStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb), mr
}

func TestStore_PutGet(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	j := job.Job{
		ID:         "abc123",
		SourcePath: "/uploads/clip.mp4",
		Kind:       job.KindVideo,
		Status:     job.StatusProcessing,
		Progress:   33,
		Metadata:   &job.Metadata{Duration: 10, Format: "mp4"},
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Put(ctx, j))

	got, err := s.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, j.ID, got.ID)
	assert.Equal(t, j.Status, got.Status)
	assert.Equal(t, j.Progress, got.Progress)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, 10.0, got.Metadata.Duration)
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := testStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutOverwritesSnapshot(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, job.Job{ID: "j1", Status: job.StatusProcessing, Progress: 33, Error: ""}))
	require.NoError(t, s.Put(ctx, job.Job{ID: "j1", Status: job.StatusCompleted, Progress: 100}))

	got, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestStore_List(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, job.Job{ID: "j1", Status: job.StatusQueued}))
	require.NoError(t, s.Put(ctx, job.Job{ID: "j2", Status: job.StatusCompleted}))

	jobs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	ids := map[string]bool{}
	for _, j := range jobs {
		ids[j.ID] = true
	}
	assert.True(t, ids["j1"])
	assert.True(t, ids["j2"])
}

func TestStore_ProcessingMarker(t *testing.T) {
	s, mr := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkProcessing(ctx, "j1", time.Minute))

	live, err := s.Processing(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, live)

	// The marker is time-bounded: it vanishes on its own if the owner dies.
	mr.FastForward(2 * time.Minute)
	live, err = s.Processing(ctx, "j1")
	require.NoError(t, err)
	assert.False(t, live)
}

func TestStore_ClearProcessing(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkProcessing(ctx, "j1", time.Minute))
	require.NoError(t, s.ClearProcessing(ctx, "j1"))

	live, err := s.Processing(ctx, "j1")
	require.NoError(t, err)
	assert.False(t, live)
}
