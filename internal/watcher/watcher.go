// Package watcher monitors an input directory and aligns new recordings as
// they appear, pairing each media file with its sibling scripts.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one detected media file.
type Handler func(ctx context.Context, path string) error

// settleDelay is how long a newly created file gets to finish writing before
// its handler starts.
const settleDelay = 500 * time.Millisecond

// Watcher reacts to new files in a single directory.
type Watcher struct {
	dir           string
	handler       Handler
	maxConcurrent int

	fsw       *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// mediaExtensions lists the file types worth reacting to.
var mediaExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".wav": true, ".flac": true,
	".ogg": true, ".aac": true, ".mp4": true, ".mov": true,
	".mkv": true, ".avi": true, ".flv": true, ".webm": true,
}

// New creates a watcher over dir with at most maxConcurrent handlers in flight.
func New(dir string, maxConcurrent int, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Watcher{
		dir:           dir,
		handler:       handler,
		maxConcurrent: maxConcurrent,
		fsw:           fsw,
		semaphore:     make(chan struct{}, maxConcurrent),
	}, nil
}

// Run blocks until the context is cancelled, dispatching a handler for every
// newly created media file. In-flight handlers are drained before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	slog.Info("watching for recordings", "dir", w.dir, "max_concurrent", w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			slog.Info("waiting for in-flight jobs")
			w.wg.Wait()
			slog.Info("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isMediaFile(event.Name) {
				slog.Debug("ignoring non-media file", "file", filepath.Base(event.Name))
				continue
			}

			slog.Info("new recording detected", "file", filepath.Base(event.Name))

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					// Let the file finish writing before we touch it. The
					// delay lives here so the event loop keeps draining.
					select {
					case <-time.After(settleDelay):
					case <-ctx.Done():
						return
					}

					if err := w.handler(ctx, path); err != nil {
						slog.Error("job failed", "file", filepath.Base(path), "err", err)
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Error("watcher error", "err", err)
		}
	}
}

func isMediaFile(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}
