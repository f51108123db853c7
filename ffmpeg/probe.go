package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"mediaq/job"
)

// ffprobeOutput mirrors the subset of `ffprobe -print_format json` we use.
type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width,omitempty"`
		Height     int    `json:"height,omitempty"`
		RFrameRate string `json:"r_frame_rate,omitempty"`
		Channels   int    `json:"channels,omitempty"`
		SampleRate string `json:"sample_rate,omitempty"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// Probe inspects the input and returns its structural metadata. A video or
// audio stream section is present only when the container carries one.
func (e *Engine) Probe(ctx context.Context, inputPath string) (*job.Metadata, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobeBin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: probe %s: %s", ErrExit, inputPath, tail(stderr.String()))
		}
		return nil, fmt.Errorf("%w: probe: %v", ErrStart, err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("%w: decode probe result: %v", ErrBadOutput, err)
	}

	meta, err := buildMetadata(probed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}
	return meta, nil
}

func buildMetadata(probed ffprobeOutput) (*job.Metadata, error) {
	meta := &job.Metadata{Format: probed.Format.FormatName}

	if probed.Format.Duration != "" {
		d, err := strconv.ParseFloat(probed.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("bad duration %q", probed.Format.Duration)
		}
		meta.Duration = d
	}
	if probed.Format.BitRate != "" {
		if b, err := strconv.ParseInt(probed.Format.BitRate, 10, 64); err == nil {
			meta.Bitrate = b
		}
	}

	for _, stream := range probed.Streams {
		switch stream.CodecType {
		case "video":
			if meta.Video != nil {
				continue
			}
			fps, err := ParseFrameRate(stream.RFrameRate)
			if err != nil {
				return nil, fmt.Errorf("stream frame rate: %v", err)
			}
			meta.Video = &job.VideoStream{
				Codec:     stream.CodecName,
				Width:     stream.Width,
				Height:    stream.Height,
				FrameRate: fps,
			}
		case "audio":
			if meta.Audio != nil {
				continue
			}
			rate, _ := strconv.Atoi(stream.SampleRate)
			meta.Audio = &job.AudioStream{
				Codec:      stream.CodecName,
				Channels:   stream.Channels,
				SampleRate: rate,
			}
		}
	}

	if meta.Video == nil && meta.Audio == nil {
		return nil, fmt.Errorf("no media streams found")
	}
	return meta, nil
}

// probeDuration is the cheap duration-only query used to scale transform
// progress. Failure is tolerable; progress just gets coarse.
func (e *Engine) probeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(output))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	return strconv.ParseFloat(s, 64)
}
