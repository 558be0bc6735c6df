// Package playlist lists the songs found in a resource directory.
package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"github.com/klokapp/klok/internal/errors"
)

// DefaultExtensions are used when Scan gets no extensions.
var DefaultExtensions = []string{".mp3", ".m4a", ".flac"}

// stemSuffixes mark separated stems of a song, which are not listed.
var stemSuffixes = []string{"non_vocals", "vocals"}

// WatchDelay is how long Watch waits for changes to settle.
const WatchDelay = 250 * time.Millisecond

type Item struct {
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Artist *string `json:"artist"`
}

// Scan lists the regular files directly in dir whose extension is one of
// exts, sorted by file name.
func Scan(dir string, exts []string) ([]Item, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.NotFoundf("resource directory does not exist: %s", dir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "failed to read resource directory %s", dir)
	}

	items := []Item{}
	for _, entry := range entries {
		name := entry.Name()
		// Stat follows symlinks to songs kept elsewhere.
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		ext := filepath.Ext(name)
		if ext == "" || ext == name || !slices.Contains(exts, ext) {
			continue
		}
		title := strings.TrimSuffix(name, ext)
		if isStem(title) {
			continue
		}
		items = append(items, Item{Title: title, URL: name})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].URL < items[j].URL
	})
	return items, nil
}

func isStem(title string) bool {
	for _, sfx := range stemSuffixes {
		if strings.HasSuffix(title, sfx) {
			return true
		}
	}
	return false
}

// Watch calls onChange with a fresh scan whenever dir changes, until ctx is
// done. Bursts of changes within WatchDelay cause one rescan.
func Watch(ctx context.Context, dir string, exts []string, onChange func([]Item)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	err = w.Add(dir)
	if err != nil {
		return fmt.Errorf("failed to watch %v: %w", dir, err)
	}

	rescan := func() {
		items, err := Scan(dir, exts)
		if err != nil {
			slog.Warn("Could not rescan playlist.", "dir", dir, "error", err)
			return
		}
		onChange(items)
	}
	debounced := debounce.New(WatchDelay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			slog.Debug("Playlist directory changed.", "event", event.String())
			debounced(rescan)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watch error.", "dir", dir, "error", err)
		}
	}
}
