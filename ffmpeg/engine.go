// Package ffmpeg wraps the external ffmpeg/ffprobe binaries behind probe,
// thumbnail and transcode operations. Each operation runs one external
// process to completion; transcodes additionally surface best-effort
// progress events parsed from ffmpeg's machine-readable progress stream.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"mediaq/config"
)

type Engine struct {
	cfg        *config.Config
	ffBin      string
	ffprobeBin string
	extraArgs  []string
	log        *logrus.Entry
}

func NewEngine(cfg *config.Config, log *logrus.Logger) (*Engine, error) {
	if _, err := exec.LookPath(cfg.FFBin); err != nil {
		return nil, fmt.Errorf("ffmpeg binary not found or not in PATH: %s", cfg.FFBin)
	}
	if _, err := exec.LookPath(cfg.FFProbeBin); err != nil {
		return nil, fmt.Errorf("ffprobe binary not found or not in PATH: %s", cfg.FFProbeBin)
	}

	extra, err := SplitExtraArgs(cfg.FFExtraArgs)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		ffBin:      cfg.FFBin,
		ffprobeBin: cfg.FFProbeBin,
		extraArgs:  extra,
		log:        log.WithField("component", "ffmpeg"),
	}, nil
}

// ExtractThumbnail captures a single frame at 10% of the input's duration,
// scaled to the configured width. Output is {id}_thumb.jpg in outputDir;
// re-running with the same id overwrites it.
func (e *Engine) ExtractThumbnail(ctx context.Context, inputPath, outputDir, id string) (string, error) {
	duration, err := e.probeDuration(ctx, inputPath)
	if err != nil {
		e.log.WithField("input", inputPath).Warn("duration probe failed, seeking from start")
		duration = 0
	}

	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_thumb.jpg", id))
	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.2f", duration*0.1),
		"-i", inputPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", e.cfg.ThumbWidth),
		"-q:v", "2",
	}
	args = append(args, e.extraArgs...)
	args = append(args, outputPath)

	if err := e.run(ctx, args, outputPath, 0, nil); err != nil {
		return "", err
	}
	return outputPath, nil
}

// TranscodeAudio converts the input to the configured audio codec and
// bitrate. Output is {id}_converted.m4a in outputDir.
func (e *Engine) TranscodeAudio(ctx context.Context, inputPath, outputDir, id string, onProgress ProgressFunc) (string, error) {
	duration, err := e.probeDuration(ctx, inputPath)
	if err != nil {
		duration = 0
	}

	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_converted.m4a", id))
	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", e.cfg.AudioCodec,
		"-b:a", e.cfg.AudioBitrate,
	}
	args = append(args, e.extraArgs...)
	args = append(args, outputPath)

	if err := e.run(ctx, args, outputPath, duration, onProgress); err != nil {
		return "", err
	}
	return outputPath, nil
}

// TranscodeVideo compresses the input to the configured codec, CRF and
// resolution, padding to preserve aspect ratio. Output is
// {id}_compressed.mp4 in outputDir.
func (e *Engine) TranscodeVideo(ctx context.Context, inputPath, outputDir, id string, onProgress ProgressFunc) (string, error) {
	duration, err := e.probeDuration(ctx, inputPath)
	if err != nil {
		duration = 0
	}

	w, h := e.cfg.VideoWidth, e.cfg.VideoHeight
	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:-1:-1", w, h, w, h)

	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_compressed.mp4", id))
	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", e.cfg.VideoCodec,
		"-preset", e.cfg.VideoPreset,
		"-crf", strconv.Itoa(e.cfg.VideoCRF),
		"-vf", vf,
		"-c:a", e.cfg.AudioCodec,
		"-b:a", e.cfg.AudioBitrate,
		"-movflags", "+faststart",
	}
	args = append(args, e.extraArgs...)
	args = append(args, outputPath)

	if err := e.run(ctx, args, outputPath, duration, onProgress); err != nil {
		return "", err
	}
	return outputPath, nil
}

// run executes ffmpeg with the given arguments, draining the progress
// stream, and verifies the output file exists and is non-empty.
func (e *Engine) run(ctx context.Context, args []string, outputPath string, duration float64, onProgress ProgressFunc) error {
	full := append([]string{"-progress", "pipe:1", "-nostats"}, args...)
	cmd := exec.CommandContext(ctx, e.ffBin, full...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrStart, err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	e.log.WithField("args", strings.Join(full, " ")).Debug("executing ffmpeg")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrStart, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanProgress(stdout, duration, onProgress)
	}()

	// Drain the pipe to EOF before Wait; Wait closes the pipe and must
	// only run after all reads complete.
	<-done
	waitErr := cmd.Wait()

	if waitErr != nil {
		os.Remove(outputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v: %s", ErrExit, waitErr, tail(stderr.String()))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("%w: output %s missing", ErrBadOutput, filepath.Base(outputPath))
	}
	if info.Size() == 0 {
		os.Remove(outputPath)
		return fmt.Errorf("%w: output %s is empty", ErrBadOutput, filepath.Base(outputPath))
	}
	return nil
}

// tail keeps error messages readable: the interesting ffmpeg diagnostics
// are at the end of stderr.
func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 512
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
