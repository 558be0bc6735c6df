// Package tags reads duration and artist tags from audio files.
package tags

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/simonhull/audiometa"
)

// Info holds the tags klok uses. Zero values mean the tag is absent.
type Info struct {
	Duration time.Duration
	Artist   string
}

// Reader reads tags of an audio file. The bool is false when nothing could
// be read.
type Reader interface {
	Read(ctx context.Context, path string) (Info, bool)
}

// AudioMeta reads tags with audiometa.
type AudioMeta struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewAudioMeta(timeout time.Duration, logger *slog.Logger) *AudioMeta {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioMeta{Timeout: timeout, Logger: logger}
}

func (a *AudioMeta) Read(ctx context.Context, path string) (Info, bool) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		a.Logger.Warn("Could not read tags.", "path", path, "error", err)
		return Info{}, false
	}
	defer file.Close() //nolint:errcheck

	info := Info{
		Duration: file.Audio.Duration,
		Artist:   strings.TrimSpace(file.Tags.Artist),
	}
	a.Logger.Debug("Read tags.", "path", path, "format", file.Format.String(), "duration", info.Duration)
	return info, true
}

// Static returns fixed tags for every path.
type Static map[string]Info

func (s Static) Read(_ context.Context, path string) (Info, bool) {
	info, ok := s[path]
	return info, ok
}
