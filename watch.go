package targ

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/targ/internal/types"
)

// Watcher re-runs the engine on files as they change.
type Watcher struct {
	engine   CheckEngine
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	onIssues func(filename string, issues []tt.Issue)

	watching bool
	dirs     []string
}

// NewWatcher creates a watcher over the given directories. onIssues
// is called after each re-check with the file's current issues.
func NewWatcher(engine CheckEngine, logger *zap.Logger, dirs []string, onIssues func(string, []tt.Issue)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}
	return &Watcher{
		engine:   engine,
		logger:   logger,
		watcher:  fsWatcher,
		onIssues: onIssues,
		dirs:     dirs,
	}, nil
}

// Start begins watching. It returns immediately; events are handled
// on a background goroutine until Stop is called.
func (w *Watcher) Start() error {
	if w.watching {
		return fmt.Errorf("already watching")
	}

	for _, dir := range w.dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.watching = true
	go w.watchLoop()
	return nil
}

// Stop ends watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	if !w.watching {
		return nil
	}
	w.watching = false
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for w.watching {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !hasDesiredExtension(event.Name) {
		return
	}

	// wait a moment so rapid successive writes coalesce into one check
	time.Sleep(100 * time.Millisecond)
	issues, err := w.engine.Run(event.Name)
	if err != nil {
		w.logger.Error("Error re-checking file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	if w.onIssues != nil {
		w.onIssues(event.Name, issues)
	}
}
