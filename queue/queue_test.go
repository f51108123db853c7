package queue

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

func testQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "media:jobs:queue")
}

func TestQueue_Enqueue(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	msg, err := q.Enqueue(ctx, job.Message{SourcePath: "/tmp/a.mp4", Kind: job.KindVideo})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID, "enqueue must assign an id")
	assert.False(t, msg.CreatedAt.IsZero())

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	var ids []string
	for _, src := range []string{"/tmp/a.mp4", "/tmp/b.mp3", "/tmp/c.mp4"} {
		msg, err := q.Enqueue(ctx, job.Message{SourcePath: src, Kind: job.KindVideo})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	for i := 0; i < 3; i++ {
		msg, err := q.Dequeue(ctx, 100*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, ids[i], msg.ID, "delivery must be head-first")
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q := testQueue(t)

	_, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQueue_ExactlyOnceDelivery(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	enqueued := map[string]bool{}
	for i := 0; i < 3; i++ {
		msg, err := q.Enqueue(ctx, job.Message{SourcePath: "/tmp/in.mp4", Kind: job.KindVideo})
		require.NoError(t, err)
		enqueued[msg.ID] = true
	}

	// Drain with two competing consumers; every entry must be delivered to
	// exactly one of them.
	seen := map[string]int{}
	for consumer := 0; consumer < 2; consumer++ {
		for {
			msg, err := q.Dequeue(ctx, 50*time.Millisecond)
			if err != nil {
				assert.ErrorIs(t, err, ErrEmpty)
				break
			}
			seen[msg.ID]++
		}
	}

	assert.Len(t, seen, len(enqueued))
	for id, count := range seen {
		assert.True(t, enqueued[id])
		assert.Equal(t, 1, count, "job %s delivered more than once", id)
	}
}

func TestQueue_DescriptorRoundTrip(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	in := job.Message{
		SourcePath: "/uploads/clip.mp4",
		FileName:   "clip.mp4",
		FileSize:   1 << 20,
		MimeType:   "video/mp4",
		Kind:       job.KindVideo,
	}
	enqueued, err := q.Enqueue(ctx, in)
	require.NoError(t, err)

	out, err := q.Dequeue(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, enqueued.ID, out.ID)
	assert.Equal(t, in.SourcePath, out.SourcePath)
	assert.Equal(t, in.FileName, out.FileName)
	assert.Equal(t, in.FileSize, out.FileSize)
	assert.Equal(t, in.MimeType, out.MimeType)
	assert.Equal(t, in.Kind, out.Kind)
}
