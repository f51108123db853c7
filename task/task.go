package task

import (
	"context"
	"time"

	"mediaq/ffmpeg"
	"mediaq/job"
)

// Engine is the slice of the media transform engine the orchestrator
// drives. *ffmpeg.Engine satisfies it; tests substitute their own.
type Engine interface {
	Probe(ctx context.Context, inputPath string) (*job.Metadata, error)
	ExtractThumbnail(ctx context.Context, inputPath, outputDir, id string) (string, error)
	TranscodeAudio(ctx context.Context, inputPath, outputDir, id string, onProgress ffmpeg.ProgressFunc) (string, error)
	TranscodeVideo(ctx context.Context, inputPath, outputDir, id string, onProgress ffmpeg.ProgressFunc) (string, error)
}

// Recorder is the slice of the job record store the orchestrator writes
// through: full snapshots plus the liveness marker.
type Recorder interface {
	Get(ctx context.Context, id string) (job.Job, error)
	Put(ctx context.Context, j job.Job) error
	MarkProcessing(ctx context.Context, id string, ttl time.Duration) error
	ClearProcessing(ctx context.Context, id string) error
}

// step is one entry in a media kind's fixed task sequence.
type step struct {
	name string
	run  func(ctx context.Context, o *Orchestrator, j *job.Job, inputPath, outputDir string) error
}

// The task sequences are fixed per media kind; a job's kind never changes,
// so its sequence is fixed for its entire lifetime.
var (
	videoSequence = []step{metadataStep, thumbnailStep, compressStep}
	audioSequence = []step{metadataStep, convertStep}
)

var metadataStep = step{
	name: "metadata",
	run: func(ctx context.Context, o *Orchestrator, j *job.Job, inputPath, _ string) error {
		meta, err := o.engine.Probe(ctx, inputPath)
		if err != nil {
			return err
		}
		j.Metadata = meta
		return nil
	},
}

var thumbnailStep = step{
	name: "thumbnail",
	run: func(ctx context.Context, o *Orchestrator, j *job.Job, inputPath, outputDir string) error {
		path, err := o.engine.ExtractThumbnail(ctx, inputPath, outputDir, j.ID)
		if err != nil {
			return err
		}
		stored, err := o.backend.Publish(ctx, path)
		if err != nil {
			return err
		}
		j.Artifacts.Thumbnail = stored
		return nil
	},
}

var compressStep = step{
	name: "compress",
	run: func(ctx context.Context, o *Orchestrator, j *job.Job, inputPath, outputDir string) error {
		path, err := o.engine.TranscodeVideo(ctx, inputPath, outputDir, j.ID, o.progressFor(j.ID, "compress"))
		if err != nil {
			return err
		}
		stored, err := o.backend.Publish(ctx, path)
		if err != nil {
			return err
		}
		j.Artifacts.CompressedVideo = stored
		return nil
	},
}

var convertStep = step{
	name: "convert",
	run: func(ctx context.Context, o *Orchestrator, j *job.Job, inputPath, outputDir string) error {
		path, err := o.engine.TranscodeAudio(ctx, inputPath, outputDir, j.ID, o.progressFor(j.ID, "convert"))
		if err != nil {
			return err
		}
		stored, err := o.backend.Publish(ctx, path)
		if err != nil {
			return err
		}
		j.Artifacts.ConvertedAudio = stored
		return nil
	},
}
