package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports changed prefab and script files on Events. Both channels
// are closed once the watcher stops.
type Watcher struct {
	Events <-chan string
	Errors <-chan error

	watcher *fsnotify.Watcher
	events  chan string
	errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
	log     *zap.Logger
}

func NewWatcher(log *zap.Logger, dirs ...string) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		watcher: fw,
		events:  make(chan string, 16),
		errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
		log:     log.Named("prefabs"),
	}
	w.Events = w.events
	w.Errors = w.errors
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.events)
		close(w.errors)
		close(w.done)
	}()

	last := make(map[string]time.Time)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isSpecFile(ev.Name) && !isScriptFile(ev.Name) {
				continue
			}
			now := time.Now()
			if t, seen := last[ev.Name]; seen && now.Sub(t) < watchDebounce {
				continue
			}
			last[ev.Name] = now
			w.log.Debug("prefab changed", zap.String("file", ev.Name))

			select {
			case w.events <- ev.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.log.Warn("prefab watcher error dropped", zap.Error(err))
			}
		case <-w.closeCh:
			return
		}
	}
}

func isSpecFile(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(p string) bool {
	return strings.ToLower(filepath.Ext(p)) == ".tengo"
}
