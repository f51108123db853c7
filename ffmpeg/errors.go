package ffmpeg

import "errors"

// The three ways an external transform can go wrong, distinguished so
// callers can tell an environment problem from a bad input.
var (
	// ErrStart: the process could not be launched at all.
	ErrStart = errors.New("ffmpeg: process failed to start")
	// ErrExit: the process ran and exited non-zero.
	ErrExit = errors.New("ffmpeg: process exited with error")
	// ErrBadOutput: the process claimed success but produced no usable output.
	ErrBadOutput = errors.New("ffmpeg: unexpected output")
)
