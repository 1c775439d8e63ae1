package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
)

// RebuildFunc performs one rebuild in response to file changes.
type RebuildFunc func(ctx context.Context) error

// Watcher watches content directories and runs rebuilds, debounced. At most
// one rebuild runs at a time; changes arriving during a rebuild queue exactly
// one follow-up.
type Watcher struct {
	dirs     []string
	quiet    time.Duration
	maxDelay time.Duration
	rebuild  RebuildFunc
	recorder metrics.Recorder
}

// New creates a watcher over dirs. Nonexistent directories are skipped with a
// warning at start.
func New(dirs []string, quiet, maxDelay time.Duration, rebuild RebuildFunc) *Watcher {
	return &Watcher{
		dirs:     dirs,
		quiet:    quiet,
		maxDelay: maxDelay,
		rebuild:  rebuild,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder injects a metrics recorder (fluent helper).
func (w *Watcher) WithRecorder(r metrics.Recorder) *Watcher {
	if r != nil {
		w.recorder = r
	}
	return w
}

// Run watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	watching := 0
	for _, dir := range w.dirs {
		if dir == "" {
			continue
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			slog.Warn("Skipping missing watch directory", logfields.Path(dir))
			continue
		}
		if err := addDirsRecursive(fsw, dir); err != nil {
			return err
		}
		watching++
	}
	if watching == 0 {
		return fmt.Errorf("no watchable directories")
	}

	rebuildReq := make(chan struct{}, 1)
	debounce := NewDebouncer(w.quiet, w.maxDelay, func() {
		select {
		case rebuildReq <- struct{}{}:
		default:
		}
	})
	defer debounce.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rebuildWorker(ctx, rebuildReq)
	}()
	defer wg.Wait()

	slog.Info("Watching for changes", slog.Int("dirs", watching))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, debounce *Debouncer) {
	if shouldIgnore(ev.Name) {
		return
	}
	// New directories need explicit watches.
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	debounce.Trigger()
}

// rebuildWorker serializes rebuilds. The capacity-1 request channel holds at
// most one follow-up while a rebuild runs.
func (w *Watcher) rebuildWorker(ctx context.Context, rebuildReq chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			w.recorder.IncRebuild("watch")
			slog.Info("Change detected, rebuilding site")
			if err := w.rebuild(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func shouldIgnore(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		return true
	}
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return true
	}
	return false
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." && path != root {
				return fs.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}
