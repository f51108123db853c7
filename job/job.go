package job

import (
    "strings"
    "time"
)

type Status string

const (
    StatusQueued     Status = "queued"
    StatusProcessing Status = "processing"
    StatusCompleted  Status = "completed"
    StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final and may never be exited.
func (s Status) Terminal() bool {
    return s == StatusCompleted || s == StatusFailed
}

type MediaKind string

const (
    KindVideo MediaKind = "video"
    KindAudio MediaKind = "audio"
)

// KindForMime maps a declared content type to a media kind. The second
// return value is false for unsupported types.
func KindForMime(mimeType string) (MediaKind, bool) {
    switch {
    case strings.HasPrefix(mimeType, "video/"):
        return KindVideo, true
    case strings.HasPrefix(mimeType, "audio/"):
        return KindAudio, true
    default:
        return "", false
    }
}

// Message is the queue entry: the subset of job fields known at enqueue time.
type Message struct {
    ID         string    `json:"id"`
    SourcePath string    `json:"sourcePath"`
    FileName   string    `json:"fileName,omitempty"`
    FileSize   int64     `json:"fileSize,omitempty"`
    MimeType   string    `json:"mimeType,omitempty"`
    Kind       MediaKind `json:"mediaKind"`
    CreatedAt  time.Time `json:"createdAt"`
}

type VideoStream struct {
    Codec     string  `json:"codec"`
    Width     int     `json:"width"`
    Height    int     `json:"height"`
    FrameRate float64 `json:"frameRate"`
}

type AudioStream struct {
    Codec      string `json:"codec"`
    Channels   int    `json:"channels"`
    SampleRate int    `json:"sampleRate"`
}

// Metadata is the probe result, written once after the metadata task.
type Metadata struct {
    Duration float64      `json:"duration"`
    Format   string       `json:"containerFormat"`
    Bitrate  int64        `json:"bitrate"`
    Video    *VideoStream `json:"video,omitempty"`
    Audio    *AudioStream `json:"audio,omitempty"`
}

// Artifacts holds derived file paths, populated incrementally as tasks
// complete. At most one entry per task kind is ever written.
type Artifacts struct {
    Thumbnail       string `json:"thumbnail,omitempty"`
    CompressedVideo string `json:"compressedVideo,omitempty"`
    ConvertedAudio  string `json:"convertedAudio,omitempty"`
}

// Job is the full record stored per job id. Snapshots are overwritten whole;
// the worker that dequeued a job is its only writer.
type Job struct {
    ID          string    `json:"id"`
    SourcePath  string    `json:"sourcePath"`
    FileName    string    `json:"fileName,omitempty"`
    FileSize    int64     `json:"fileSize,omitempty"`
    MimeType    string    `json:"mimeType,omitempty"`
    Kind        MediaKind `json:"mediaKind"`
    Status      Status    `json:"status"`
    Progress    int       `json:"progress"`
    Metadata    *Metadata `json:"metadata,omitempty"`
    Artifacts   Artifacts `json:"artifacts"`
    Error       string    `json:"error,omitempty"`
    CreatedAt   time.Time `json:"createdAt"`
    StartedAt   time.Time `json:"startedAt,omitempty"`
    CompletedAt time.Time `json:"completedAt,omitempty"`
}

// NewQueued builds the initial record for a freshly enqueued descriptor.
func NewQueued(msg Message) Job {
    return Job{
        ID:         msg.ID,
        SourcePath: msg.SourcePath,
        FileName:   msg.FileName,
        FileSize:   msg.FileSize,
        MimeType:   msg.MimeType,
        Kind:       msg.Kind,
        Status:     StatusQueued,
        Progress:   0,
        CreatedAt:  msg.CreatedAt,
    }
}
