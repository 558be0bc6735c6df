// Package metadata assembles what the player shows for a song: title,
// artist, duration and timed lyrics.
package metadata

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/klokapp/klok/internal/errors"
	"github.com/klokapp/klok/internal/lyrics"
	"github.com/klokapp/klok/internal/resource"
	"github.com/klokapp/klok/internal/tags"
)

// LyricsExtension is the extension of lyric files next to a song.
const LyricsExtension = ".lrc"

// trailingSeconds is added after the last lyric line when the song length
// is unknown.
const trailingSeconds = 10

// audioExtensions are replaced by WithExtension.
var audioExtensions = []string{".mp3", ".m4a", ".flac"}

type Metadata struct {
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	URL      string        `json:"url"`
	Duration float64       `json:"duration"`
	Lyrics   []lyrics.Line `json:"lyrics"`
}

// WithExtension returns name with its audio extension replaced by ext.
// Names already ending in ext are returned as is; other names get ext
// appended.
func WithExtension(name, ext string) string {
	if strings.HasSuffix(name, ext) {
		return name
	}
	for _, audio := range audioExtensions {
		if strings.HasSuffix(name, audio) {
			return strings.TrimSuffix(name, audio) + ext
		}
	}
	return name + ext
}

// title returns the file stem of name.
func title(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "/" || base == "." || base == ".." {
		return "", false
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return base, true
	}
	return stem, true
}

// Assembler builds Metadata from resources.
type Assembler struct {
	store     *resource.Store
	tags      tags.Reader
	fallbacks Fallbacks
}

// NewAssembler creates an Assembler. A nil tag reader disables tags.
func NewAssembler(store *resource.Store, reader tags.Reader, fallbacks Fallbacks) *Assembler {
	return &Assembler{store: store, tags: reader, fallbacks: fallbacks}
}

// Get returns the metadata of the song or lyric file name.
func (a *Assembler) Get(ctx context.Context, name string) (*Metadata, error) {
	if name == "" {
		return nil, errors.Validation("path argument is empty")
	}
	t, ok := title(name)
	if !ok {
		return nil, errors.Validation("failed to extract title from path")
	}
	explicit := strings.HasSuffix(name, LyricsExtension)

	lines, found, err := a.readLyrics(WithExtension(name, LyricsExtension))
	if err != nil {
		return nil, err
	}
	if explicit && !found {
		return nil, errors.NotFoundf("%s file not found for provided path: %s", LyricsExtension, name)
	}
	if len(lines) == 0 {
		lines = []lyrics.Line{
			{Time: 0, Text: t},
			{Time: 1, Text: a.fallbacks.NoLyrics},
		}
	}

	md := &Metadata{
		Title:    t,
		Artist:   a.fallbacks.UnknownArtist,
		URL:      name,
		Duration: lines[len(lines)-1].Time + trailingSeconds,
		Lyrics:   lines,
	}
	if !explicit {
		a.applyTags(ctx, md)
	}
	return md, nil
}

func (a *Assembler) readLyrics(name string) ([]lyrics.Line, bool, error) {
	raw, err := a.store.ReadFile(name)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.CodeOf(err), "failed to read %s", name)
	}
	content, err := lyrics.Decode(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.CodeMalformed, "failed to read %s", name)
	}
	lines := lyrics.Parse(content)
	slog.Debug("Parsed lyrics.", "path", name, "lines", len(lines))
	return lines, true, nil
}

func (a *Assembler) applyTags(ctx context.Context, md *Metadata) {
	if a.tags == nil {
		return
	}
	p, ok := a.store.Resolve(md.URL)
	if !ok {
		return
	}
	info, ok := a.tags.Read(ctx, p)
	if !ok {
		return
	}
	if info.Duration > 0 {
		md.Duration = info.Duration.Seconds()
	}
	if info.Artist != "" {
		md.Artist = info.Artist
	}
}
