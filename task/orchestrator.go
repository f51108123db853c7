// Package task drives a dequeued job through its media kind's fixed task
// sequence, updating the job's state machine and progress checkpoints in
// the record store along the way.
package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"mediaq/config"
	"mediaq/job"
	"mediaq/storage"
	"mediaq/store"
)

type Orchestrator struct {
	cfg     *config.Config
	engine  Engine
	records Recorder
	backend storage.Backend
	log     *logrus.Entry
}

func NewOrchestrator(cfg *config.Config, engine Engine, records Recorder, backend storage.Backend, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		engine:  engine,
		records: records,
		backend: backend,
		log:     log.WithField("component", "orchestrator"),
	}
}

// Process runs one job to a terminal state and returns the final record.
// Task failures fail the job; store write failures are logged and skipped,
// leaving the record at its last successfully written checkpoint.
func (o *Orchestrator) Process(ctx context.Context, msg job.Message) job.Job {
	log := o.log.WithFields(logrus.Fields{"job_id": msg.ID, "kind": msg.Kind})

	j, err := o.records.Get(ctx, msg.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.WithError(err).Warn("could not read existing record, starting fresh")
		}
		j = job.NewQueued(msg)
	}
	if j.Status.Terminal() {
		// Forward-only state machine: a terminal record is never reopened,
		// even if its descriptor somehow reappears on the channel.
		log.Warn("job already terminal, skipping")
		return j
	}

	j.Status = job.StatusProcessing
	j.Progress = 0
	if j.StartedAt.IsZero() {
		j.StartedAt = time.Now().UTC()
	}
	o.checkpoint(ctx, j, log)

	steps, ok := sequenceFor(j.Kind)
	if !ok {
		return o.fail(ctx, j, "select tasks", fmt.Errorf("unsupported media kind %q", j.Kind), log)
	}

	inputPath, cleanup, err := o.backend.Fetch(ctx, j.SourcePath)
	defer cleanup()
	if err != nil {
		return o.fail(ctx, j, "fetch input", err, log)
	}
	if err := o.checkInputSize(inputPath); err != nil {
		return o.fail(ctx, j, "fetch input", err, log)
	}

	outputDir := filepath.Join(o.cfg.OutputDir, j.ID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return o.fail(ctx, j, "prepare output", err, log)
	}

	for i, st := range steps {
		log.WithField("step", st.name).Info("running task")
		if err := st.run(ctx, o, &j, inputPath, outputDir); err != nil {
			return o.fail(ctx, j, st.name, err, log)
		}
		// The per-step checkpoint is the only persisted progress
		// granularity; finer engine events are surfaced transiently.
		j.Progress = 100 * (i + 1) / len(steps)
		if i < len(steps)-1 {
			o.checkpoint(ctx, j, log)
		}
	}

	j.Status = job.StatusCompleted
	j.CompletedAt = time.Now().UTC()
	if err := o.records.Put(ctx, j); err != nil {
		log.WithError(err).Error("failed to record completion")
	}
	if err := o.records.ClearProcessing(ctx, j.ID); err != nil {
		log.WithError(err).Warn("failed to clear liveness marker")
	}
	log.WithField("progress", j.Progress).Info("job completed")
	return j
}

func sequenceFor(kind job.MediaKind) ([]step, bool) {
	switch kind {
	case job.KindVideo:
		return videoSequence, true
	case job.KindAudio:
		return audioSequence, true
	default:
		return nil, false
	}
}

// checkpoint writes a full snapshot and refreshes the liveness marker. A
// lost checkpoint is at most one step of progress, never a corrupt record.
func (o *Orchestrator) checkpoint(ctx context.Context, j job.Job, log *logrus.Entry) {
	if err := o.records.Put(ctx, j); err != nil {
		log.WithError(err).Error("failed to write checkpoint")
	}
	if err := o.records.MarkProcessing(ctx, j.ID, o.cfg.ProcessingTTL); err != nil {
		log.WithError(err).Warn("failed to refresh liveness marker")
	}
}

func (o *Orchestrator) fail(ctx context.Context, j job.Job, stepName string, cause error, log *logrus.Entry) job.Job {
	log.WithError(cause).WithField("step", stepName).Error("job failed")

	j.Status = job.StatusFailed
	j.Error = fmt.Sprintf("%s: %v", stepName, cause)
	j.CompletedAt = time.Now().UTC()
	if err := o.records.Put(ctx, j); err != nil {
		log.WithError(err).Error("failed to record failure")
	}
	if err := o.records.ClearProcessing(ctx, j.ID); err != nil {
		log.WithError(err).Warn("failed to clear liveness marker")
	}
	return j
}

func (o *Orchestrator) checkInputSize(inputPath string) error {
	if o.cfg.MaxInputSize <= 0 {
		return nil
	}
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}
	if info.Size() > o.cfg.MaxInputSize {
		return fmt.Errorf("input size %d exceeds limit of %d bytes", info.Size(), o.cfg.MaxInputSize)
	}
	return nil
}

// progressFor surfaces the engine's finer-grained progress events as debug
// logs only; they are never written to the record store.
func (o *Orchestrator) progressFor(id, stepName string) func(float64) {
	return func(pct float64) {
		o.log.WithFields(logrus.Fields{
			"job_id":  id,
			"step":    stepName,
			"percent": fmt.Sprintf("%.0f", pct),
		}).Debug("transform progress")
	}
}
