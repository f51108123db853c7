// Package worker is the process-level driver: it blocks on the queue
// channel, hands each delivered job to the orchestrator synchronously, and
// retries the polling loop with a fixed backoff when the infrastructure is
// unavailable. One Worker is one sequential consumer; throughput scales by
// running more instances against the same queue.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"mediaq/config"
	"mediaq/job"
	"mediaq/queue"
)

type Dequeuer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (job.Message, error)
}

type Processor interface {
	Process(ctx context.Context, msg job.Message) job.Job
}

type Worker struct {
	cfg   *config.Config
	queue Dequeuer
	orch  Processor
	gate  func() error
	log   *logrus.Entry
}

func New(cfg *config.Config, q Dequeuer, orch Processor, log *logrus.Logger) *Worker {
	w := &Worker{
		cfg:   cfg,
		queue: q,
		orch:  orch,
		log:   log.WithField("component", "worker"),
	}
	w.gate = w.checkResources
	return w
}

// Run polls until ctx is cancelled. Cancellation is only observed between
// iterations: a job in flight always reaches a terminal state first.
func (w *Worker) Run(ctx context.Context) error {
	w.log.WithField("queue", w.cfg.QueueKey).Info("worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopping")
			return ctx.Err()
		default:
		}

		if err := w.gate(); err != nil {
			w.log.WithError(err).Warn("insufficient system resources, deferring poll")
			w.sleep(ctx)
			continue
		}

		msg, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			// Infrastructure failure: back off and retry the loop. This
			// never targets a specific job.
			w.log.WithError(err).Error("queue unavailable, backing off")
			w.sleep(ctx)
			continue
		}

		w.log.WithFields(logrus.Fields{"job_id": msg.ID, "source": msg.SourcePath}).Info("job received")
		// Shutdown must not fail a healthy in-flight job: cancellation is
		// observed at the top of the loop only, so the job runs detached
		// from the polling context.
		result := w.orch.Process(context.WithoutCancel(ctx), msg)
		w.log.WithFields(logrus.Fields{"job_id": result.ID, "status": result.Status}).Info("job finished")
	}
}

// sleep waits out the poll backoff, or less if ctx is cancelled first.
func (w *Worker) sleep(ctx context.Context) {
	timer := time.NewTimer(w.cfg.PollBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
