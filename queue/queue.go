// Package queue is the shared FIFO channel of pending job descriptors.
//
// Delivery is a Redis list: producers RPUSH serialized descriptors, workers
// BLPOP them. The atomic pop hands each entry to exactly one consumer; there
// is no visibility timeout and no redelivery, so a consumer that dies between
// the pop and its first status write loses that job.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/redis/go-redis/v9"

	"mediaq/job"
)

// ErrEmpty is returned by Dequeue when the poll timeout elapses with no
// pending entries. Callers loop on it.
var ErrEmpty = errors.New("queue: no pending jobs")

type Queue struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

// Enqueue appends a descriptor to the tail of the channel. An empty ID is
// assigned here; CreatedAt is stamped if unset. The (possibly updated)
// descriptor is returned so producers can report the id.
func (q *Queue) Enqueue(ctx context.Context, msg job.Message) (job.Message, error) {
	if msg.ID == "" {
		msg.ID = shortuuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return msg, fmt.Errorf("marshal job descriptor: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, payload).Err(); err != nil {
		return msg, fmt.Errorf("push job %s: %w", msg.ID, err)
	}
	return msg, nil
}

// Dequeue blocks until an entry is available or the timeout elapses, and
// atomically removes and returns the head entry. An elapsed timeout yields
// ErrEmpty; anything else is an infrastructure error.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (job.Message, error) {
	var msg job.Message

	res, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return msg, ErrEmpty
		}
		return msg, fmt.Errorf("pop queue %s: %w", q.key, err)
	}
	// BLPOP replies [key, value].
	if len(res) < 2 {
		return msg, fmt.Errorf("pop queue %s: short reply", q.key)
	}

	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return msg, fmt.Errorf("decode job descriptor: %w", err)
	}
	return msg, nil
}

// Len reports the number of pending entries.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
