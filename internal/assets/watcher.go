package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// Watcher reports asset files that were created or rewritten under a root
// directory. New subdirectories are watched as they appear.
type Watcher struct {
	root    string
	fs      *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	log     *zap.Logger
}

// NewWatcher starts watching root and everything below it.
func NewWatcher(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:    root,
		fs:      fw,
		changes: make(chan string, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		log:     logger.Named("watcher"),
	}
	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// Changes delivers slash-separated paths relative to the root.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops watching. Changes is closed once the watcher has stopped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		<-w.stopped
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.stopped)
	defer close(w.changes)

	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(e)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
			if err := w.addRecursive(e.Name); err != nil {
				w.log.Warn("failed to watch directory", zap.String("dir", e.Name), zap.Error(err))
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	rel, err := filepath.Rel(w.root, e.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	select {
	case w.changes <- rel:
	default:
		w.log.Debug("dropping change, queue full", zap.String("path", rel))
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.fs.Add(p)
		}
		return nil
	})
}
