// Package library serves songs, MIDI notes, lyrics and playlists from a
// resource store.
package library

import (
	"context"
	"encoding/base64"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/klokapp/klok/internal/errors"
	"github.com/klokapp/klok/internal/metadata"
	"github.com/klokapp/klok/internal/midinotes"
	"github.com/klokapp/klok/internal/playlist"
	"github.com/klokapp/klok/internal/resource"
	"github.com/klokapp/klok/internal/tags"
)

var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// MIMEType returns the content type used for the audio file name.
func MIMEType(name string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

type Service struct {
	store      *resource.Store
	assembler  *metadata.Assembler
	extensions []string
	logger     *slog.Logger
}

type Options struct {
	Tags       tags.Reader
	Fallbacks  metadata.Fallbacks
	Extensions []string
	Logger     *slog.Logger
}

func New(store *resource.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fallbacks == (metadata.Fallbacks{}) {
		opts.Fallbacks = metadata.FallbacksFor(nil)
	}
	return &Service{
		store:      store,
		assembler:  metadata.NewAssembler(store, opts.Tags, opts.Fallbacks),
		extensions: opts.Extensions,
		logger:     opts.Logger,
	}
}

// Store returns the underlying resource store.
func (s *Service) Store() *resource.Store {
	return s.store
}

func (s *Service) read(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.Validation("path argument is empty")
	}
	return s.store.ReadFile(name)
}

// LoadFile parses a MIDI resource without reconstructing notes.
func (s *Service) LoadFile(name string) (*midinotes.File, error) {
	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	f, err := midinotes.Parse(data)
	switch {
	case errors.Is(err, midinotes.ErrUnsupportedTiming):
		return nil, errors.Wrapf(err, errors.CodeUnsupported, "cannot play %s", name)
	case err != nil:
		return nil, errors.Wrapf(err, errors.CodeMalformed, "failed to parse midi %s", name)
	}
	return f, nil
}

// LoadMIDI decodes the notes of a MIDI resource.
func (s *Service) LoadMIDI(name string) ([]midinotes.Note, error) {
	f, err := s.LoadFile(name)
	if err != nil {
		return nil, err
	}
	notes := f.Notes()
	s.logger.Info("Loaded MIDI.", "path", name, "tracks", len(f.Tracks), "notes", len(notes))
	return notes, nil
}

// LoadAudio returns the audio resource as a base64 data URL.
func (s *Service) LoadAudio(name string) (string, error) {
	data, err := s.read(name)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Loaded audio.", "path", name, "bytes", len(data))
	return "data:" + MIMEType(name) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// GetMetadata returns title, artist, duration and lyrics of a song.
func (s *Service) GetMetadata(ctx context.Context, name string) (*metadata.Metadata, error) {
	md, err := s.assembler.Get(ctx, name)
	if err != nil {
		s.logger.Warn("Could not get metadata.", "path", name, "error", err)
		return nil, err
	}
	return md, nil
}

// Extensions returns the playlist extensions used when none are requested.
func (s *Service) Extensions() []string {
	if len(s.extensions) == 0 {
		return playlist.DefaultExtensions
	}
	return s.extensions
}

// LoadPlaylist lists the songs at the top of the resource root.
func (s *Service) LoadPlaylist(exts []string) ([]playlist.Item, error) {
	if len(exts) == 0 {
		exts = s.Extensions()
	}
	return playlist.Scan(s.store.Root(), exts)
}

// WatchPlaylist calls onChange with a new playlist whenever the resource
// root changes.
func (s *Service) WatchPlaylist(ctx context.Context, exts []string, onChange func([]playlist.Item)) error {
	if len(exts) == 0 {
		exts = s.Extensions()
	}
	return playlist.Watch(ctx, s.store.Root(), exts, onChange)
}
