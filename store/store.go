// Package store is the keyed snapshot store for job records.
//
// Writes are whole-snapshot overwrites. There is no optimistic concurrency:
// the worker that popped a job is its only writer for the job's lifetime, so
// concurrent-writer races are excluded by queue semantics, not by locking.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mediaq/job"
)

var ErrNotFound = errors.New("store: job not found")

const indexKey = "jobs:index"

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func recordKey(id string) string {
	return fmt.Sprintf("job:%s", id)
}

func processingKey(id string) string {
	return fmt.Sprintf("job:%s_processing", id)
}

// Put overwrites the snapshot for j.ID and registers the id in the index.
func (s *Store) Put(ctx context.Context, j job.Job) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", j.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, recordKey(j.ID), payload, 0)
	pipe.SAdd(ctx, indexKey, j.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write job %s: %w", j.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (job.Job, error) {
	var j job.Job

	payload, err := s.rdb.Get(ctx, recordKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return j, ErrNotFound
		}
		return j, fmt.Errorf("read job %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(payload), &j); err != nil {
		return j, fmt.Errorf("decode job %s: %w", id, err)
	}
	return j, nil
}

// List returns a snapshot of every known job record. Ids whose record has
// been removed out-of-band are skipped.
func (s *Store) List(ctx context.Context) ([]job.Job, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read job index: %w", err)
	}

	jobs := make([]job.Job, 0, len(ids))
	for _, id := range ids {
		j, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// MarkProcessing sets the time-bounded liveness marker for id. Callers
// refresh it at every checkpoint so an expired marker signals a stalled or
// dead owner to external inspectors.
func (s *Store) MarkProcessing(ctx context.Context, id string, ttl time.Duration) error {
	return s.rdb.Set(ctx, processingKey(id), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

// ClearProcessing removes the liveness marker on terminal transition.
func (s *Store) ClearProcessing(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, processingKey(id)).Err()
}

// Processing reports whether the liveness marker for id is currently set.
// Absence implies neither success nor failure.
func (s *Store) Processing(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, processingKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
