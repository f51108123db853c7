// Package storage abstracts where job inputs live and where artifacts end
// up. The local backend is a passthrough over the filesystem; the MinIO
// backend stages object-store inputs through a temp file and publishes
// artifacts back as bucket/object paths.
package storage

import (
	"context"
	"fmt"
	"os"
)

type Backend interface {
	// Fetch makes the source available as a local file. The cleanup func
	// releases any staged copy and is safe to call on error.
	Fetch(ctx context.Context, source string) (localPath string, cleanup func(), err error)
	// Publish stores the artifact and returns the path callers should
	// record for it.
	Publish(ctx context.Context, localPath string) (storedPath string, err error)
}

// Local serves jobs whose sources and artifacts are plain filesystem paths.
type Local struct{}

func (Local) Fetch(_ context.Context, source string) (string, func(), error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", func() {}, fmt.Errorf("source file: %w", err)
	}
	if info.IsDir() {
		return "", func() {}, fmt.Errorf("source %s is a directory", source)
	}
	return source, func() {}, nil
}

func (Local) Publish(_ context.Context, localPath string) (string, error) {
	return localPath, nil
}
