package policyfile

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounceDuration coalesces the bursts of filesystem events that
// editors and atomic-rename writers produce for a single save.
const debounceDuration = 100 * time.Millisecond

// A Watcher watches a policy file and reloads it whenever it changes.
// Each successful reload hands the freshly parsed [File] to the
// callback registered with [Watch]; a reload that fails (unreadable or
// malformed file) is logged and otherwise ignored, so the previously
// delivered policies remain in effect.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	onLoad  func(*File)
	cancel  context.CancelFunc
	done    chan struct{}
}

// Watch starts watching the policy file at path and invokes onLoad with
// each successfully reloaded file. The file need not exist yet; onLoad
// then first fires once it appears.
//
// onLoad is invoked from a single dedicated goroutine; it must not
// block indefinitely. Call [*Watcher.Close] to release the watcher's
// resources.
func Watch(path string, logger zerolog.Logger, onLoad func(*File)) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the parent directory rather than the file itself: editors
	// and configuration-management tools typically replace the file by
	// renaming a temporary one over it, which would otherwise sever the
	// watch.
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    absPath,
		watcher: fsw,
		logger:  logger,
		onLoad:  onLoad,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// fsnotify events may use different path separators or
			// relative paths.
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Chmod) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("policy-file watcher error")
		}
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		w.logger.Warn().
			Err(err).
			Str("path", w.path).
			Msg("policy-file reload failed; keeping previous policies")
		return
	}
	w.logger.Info().Str("path", w.path).Msg("policy file reloaded")
	w.onLoad(f)
}
