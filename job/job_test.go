package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindForMime(t *testing.T) {
	cases := []struct {
		mime string
		kind MediaKind
		ok   bool
	}{
		{"video/mp4", KindVideo, true},
		{"video/x-matroska", KindVideo, true},
		{"audio/mpeg", KindAudio, true},
		{"audio/wav", KindAudio, true},
		{"image/png", "", false},
		{"application/pdf", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		kind, ok := KindForMime(tc.mime)
		assert.Equal(t, tc.ok, ok, "mime %q", tc.mime)
		assert.Equal(t, tc.kind, kind, "mime %q", tc.mime)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestNewQueued(t *testing.T) {
	created := time.Now().UTC()
	msg := Message{
		ID:         "abc",
		SourcePath: "/uploads/clip.mp4",
		FileName:   "clip.mp4",
		FileSize:   42,
		MimeType:   "video/mp4",
		Kind:       KindVideo,
		CreatedAt:  created,
	}

	j := NewQueued(msg)
	assert.Equal(t, "abc", j.ID)
	assert.Equal(t, StatusQueued, j.Status)
	assert.Equal(t, 0, j.Progress)
	assert.Equal(t, KindVideo, j.Kind)
	assert.Equal(t, created, j.CreatedAt)
	assert.Empty(t, j.Error)
	assert.Nil(t, j.Metadata)
}
