// Package filesystem keeps the documents index in step with a local file tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Watcher scans a file tree and then follows its changes.
// Roots are computed relative to the parent of the watched directory,
// so a file directly under the watched root "R" has root "file://R/".
// A symlinked root is followed; roots then name the link's target.
type Watcher struct {
	root      string
	base      string
	extractor driven.Extractor
	sink      driven.DocumentSink

	// concurrency bounds parallel extraction during Scan.
	concurrency int

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
	done    chan struct{}

	// dirs holds the paths watched as directories, so their removal is
	// not mistaken for a file removal.
	dirMu sync.Mutex
	dirs  map[string]struct{}
}

// New creates a watcher for the tree at root.
func New(root string, extractor driven.Extractor, sink driven.DocumentSink) *Watcher {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &Watcher{
		root:        abs,
		base:        filepath.Dir(abs),
		extractor:   extractor,
		sink:        sink,
		concurrency: runtime.NumCPU(),
		dirs:        make(map[string]struct{}),
	}
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Run performs a full scan and then watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.Scan(ctx); err != nil {
		return err
	}
	if err := w.Watch(ctx); err != nil {
		return err
	}
	w.Wait()
	return nil
}

// Scan walks the tree and emits a document for every file that extracts.
// Returns the number of documents emitted.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	if err := w.checkRoot(); err != nil {
		return 0, err
	}
	return w.scanDir(ctx, w.root)
}

func (w *Watcher) scanDir(ctx context.Context, dir string) (int, error) {
	var emitted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			return nil
		}
		if gctx.Err() != nil {
			return gctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if w.emitFile(path) {
				emitted.Add(1)
			}
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return int(emitted.Load()), err
	}
	if walkErr != nil {
		return int(emitted.Load()), fmt.Errorf("walk %s: %w", dir, walkErr)
	}
	return int(emitted.Load()), nil
}

// Watch subscribes to changes in every directory of the tree and
// processes them on a background goroutine until ctx is cancelled or
// Close is called. Failing to watch the root is returned as an error.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("watcher is closed")
	}
	if w.watcher != nil {
		return errors.New("watcher already started")
	}
	if err := w.checkRoot(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.watcher = fsw
	w.done = make(chan struct{})
	w.addRecursive(w.root)

	go w.processEvents(ctx, fsw, w.done)
	return nil
}

// Wait blocks until the event loop started by Watch has exited.
func (w *Watcher) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) checkRoot() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", w.root)
	}
	return nil
}

// addRecursive watches dir and every directory below it.
func (w *Watcher) addRecursive(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			logger.Warn("failed to watch %s: %v", path, err)
			return nil
		}
		w.markDir(path)
		return nil
	})
}

func (w *Watcher) markDir(dir string) {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	w.dirs[dir] = struct{}{}
}

func (w *Watcher) unmarkDir(path string) {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	delete(w.dirs, path)
}

// watchedDir reports whether path was ever watched as a directory.
// Entries outlive the directory: a removal can be reported both by the
// directory's own watch and by its parent's.
func (w *Watcher) watchedDir(path string) bool {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	_, ok := w.dirs[path]
	return ok
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				w.addDirectory(ctx, event.Name)
				continue
			}
			if change := w.handleFsEvent(event); change != nil {
				w.apply(change)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Error("file watcher: %v", err)
		}
	}
}

// addDirectory watches a newly created directory and emits the files
// that appeared in it before the watch was in place.
func (w *Watcher) addDirectory(ctx context.Context, dir string) {
	w.mu.Lock()
	fsw := w.watcher
	w.mu.Unlock()
	if fsw == nil {
		return
	}

	w.addRecursive(dir)
	if _, err := w.scanDir(ctx, dir); err != nil && ctx.Err() == nil {
		logger.Warn("failed to scan new directory %s: %v", dir, err)
	}
}

// handleFsEvent classifies a notification. Directory events, including
// the removal of a watched directory, and events on non-regular files
// yield nil.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		info, err := os.Stat(event.Name)
		if err == nil {
			if !info.Mode().IsRegular() {
				return nil
			}
			w.unmarkDir(event.Name)
			changeType := domain.ChangeUpdated
			if event.Has(fsnotify.Create) {
				changeType = domain.ChangeCreated
			}
			return &domain.FileChange{Type: changeType, Path: event.Name}
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.watchedDir(event.Name) {
			return nil
		}
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}
	}
	return nil
}

// apply turns a classified change into sink calls.
func (w *Watcher) apply(change *domain.FileChange) {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		w.emitFile(change.Path)
	case domain.ChangeDeleted:
		name, root, ok := w.identify(change.Path)
		if !ok {
			return
		}
		w.sink.InvalidateDocument(domain.NewDocumentID(name, root))
	}
}

// emitFile extracts path and emits its document. Reports whether a
// document was emitted.
func (w *Watcher) emitFile(path string) bool {
	name, root, ok := w.identify(path)
	if !ok {
		return false
	}
	text, ok := w.extractor.Extract(path)
	if !ok {
		return false
	}
	w.sink.AddDocument(domain.NewDocument(name, root, text))
	return true
}

func (w *Watcher) identify(path string) (string, domain.Root, bool) {
	name := filepath.Base(path)
	if !utf8.ValidString(name) {
		logger.Error("file name of %q is not valid UTF-8", path)
		return "", domain.Root{}, false
	}
	root, err := domain.NewFileRoot(path, w.base)
	if err != nil {
		logger.Error("failed to compute root of %s: %v", path, err)
		return "", domain.Root{}, false
	}
	return name, root, true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
