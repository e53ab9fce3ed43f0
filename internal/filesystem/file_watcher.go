package filesystem

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/regenproject/regen/internal/common"
)

// FSChangeHandler provides a callback mechanism used by the FileWatcher
// to notify about changes to a monitored directory or file.
type FSChangeHandler interface {
	OnBasePathAdded(basePath string)
	OnCreate(string)
	OnUpdate(string)
	OnRemove(string)
	Filter(string) bool
}

type opKind int

const (
	opBasePath opKind = iota
	opCreate
	opUpdate
	opRemove
)

type eventTrigger struct {
	handler FSChangeHandler
	op      opKind
	name    string
}

func (e eventTrigger) dispatch() {
	switch e.op {
	case opBasePath:
		e.handler.OnBasePathAdded(e.name)
	case opCreate:
		e.handler.OnCreate(e.name)
	case opUpdate:
		e.handler.OnUpdate(e.name)
	case opRemove:
		e.handler.OnRemove(e.name)
	}
}

const defaultDebounce = 500 * time.Millisecond

// FileWatcher uses fsnotify to watch file system changes done to files
// or directories, notifying the respective handlers. Triggers are held
// until no new event has arrived for a full debounce window and
// duplicates are dropped, so a burst of writes to the same file turns
// into a single OnUpdate. It is recommended to watch directories over
// files: editors commonly replace a file by renaming a temporary copy
// over it, which silently drops a watch placed on the file itself.
type FileWatcher struct {
	runningLock sync.Mutex
	handlerLock sync.RWMutex
	watcherLock sync.Mutex
	logger      *slog.Logger
	started     bool
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	refresh     chan bool
	triggerCh   chan eventTrigger
	handlerMap  map[string][]FSChangeHandler
}

func NewWatcher(attrs ...slog.Attr) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger().With(slog.String("component", "filesystem"))
	for _, attr := range attrs {
		logger = logger.With(slog.Any(attr.Key, attr.Value))
	}
	return &FileWatcher{
		watcher:    watcher,
		logger:     logger,
		debounce:   defaultDebounce,
		refresh:    make(chan bool, 1),
		triggerCh:  make(chan eventTrigger),
		handlerMap: map[string][]FSChangeHandler{},
	}, nil
}

// SetDebounce adjusts how long dispatch waits for a burst to settle.
// It must be called before Start.
func (w *FileWatcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

func (w *FileWatcher) filterHandlers(name string) []FSChangeHandler {
	w.handlerLock.RLock()
	defer w.handlerLock.RUnlock()
	var filteredHandlers []FSChangeHandler

	for baseName, handlers := range w.handlerMap {
		if !strings.HasPrefix(name, baseName) {
			continue
		}
		for _, handler := range handlers {
			if handler.Filter(name) {
				filteredHandlers = append(filteredHandlers, handler)
			}
		}
	}
	return filteredHandlers
}

func (w *FileWatcher) Start(stopCh <-chan struct{}) {
	w.runningLock.Lock()
	defer w.runningLock.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.monitorPaths(stopCh)
	go w.processEvents(stopCh)
	go w.dispatchTriggers(stopCh)
}

// trigger queues an event for dispatching, giving up when the watcher
// is stopped so shutdown never blocks on a full queue.
func (w *FileWatcher) trigger(event eventTrigger, stopCh <-chan struct{}) {
	select {
	case w.triggerCh <- event:
	case <-stopCh:
	}
}

func (w *FileWatcher) requestRefresh() {
	select {
	case w.refresh <- true:
	default:
	}
}

func (w *FileWatcher) processEvents(stopCh <-chan struct{}) {
	for {
		select {
		case event := <-w.watcher.Events:
			handlers := w.filterHandlers(event.Name)
			switch {
			case event.Has(fsnotify.Create):
				for _, handler := range handlers {
					w.logger.Debug("create", slog.String("name", event.Name))
					w.trigger(eventTrigger{handler: handler, op: opCreate, name: event.Name}, stopCh)
				}
			case event.Has(fsnotify.Write):
				for _, handler := range handlers {
					w.logger.Debug("update", slog.String("name", event.Name))
					w.trigger(eventTrigger{handler: handler, op: opUpdate, name: event.Name}, stopCh)
				}
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				for _, handler := range handlers {
					w.logger.Debug("remove", slog.String("name", event.Name))
					w.trigger(eventTrigger{handler: handler, op: opRemove, name: event.Name}, stopCh)
				}
				// if object being watched is removed, watch for it to show up again
				w.handlerLock.RLock()
				_, watched := w.handlerMap[event.Name]
				w.handlerLock.RUnlock()
				if watched {
					w.requestRefresh()
				}
			}
		case <-stopCh:
			_ = w.watcher.Close()
			return
		}
	}
}

// dispatchTriggers delivers queued triggers once no new event has
// arrived for a full debounce window, dropping duplicates so that a
// burst of events on the same file produces a single callback.
// Handlers run serially on this goroutine.
func (w *FileWatcher) dispatchTriggers(stopCh <-chan struct{}) {
	var pending []eventTrigger
	var quiet <-chan time.Time

	for {
		select {
		case event := <-w.triggerCh:
			pending = append(pending, event)
			quiet = time.After(w.debounce)
		case <-quiet:
			seen := make(map[eventTrigger]bool, len(pending))
			for _, event := range pending {
				if seen[event] {
					continue
				}
				seen[event] = true
				event.dispatch()
			}
			pending = nil
			quiet = nil
		case <-stopCh:
			return
		}
	}
}

// monitorPaths monitors paths added to the handlers map, adding watchers
// when those paths exist (fsNotify does not accept non-existing paths)
// and removing them from fsNotify, if they no longer exist.
func (w *FileWatcher) monitorPaths(stopCh <-chan struct{}) {
	w.logger.Debug("start monitoring paths")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	w.manageWatchers(stopCh)
	for {
		select {
		case <-w.refresh:
			w.manageWatchers(stopCh)
		case <-ticker.C:
			w.manageWatchers(stopCh)
		case <-stopCh:
			w.logger.Debug("stop monitoring paths")
			return
		}
	}
}

func (w *FileWatcher) manageWatchers(stopCh <-chan struct{}) {
	w.watcherLock.Lock()
	defer w.watcherLock.Unlock()
	w.handlerLock.RLock()
	defer w.handlerLock.RUnlock()
	for path, handlers := range w.handlerMap {
		stat, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Error("error verifying monitored path",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			if slices.Contains(w.watcher.WatchList(), path) {
				if err := w.watcher.Remove(path); err != nil {
					w.logger.Error("error removing monitored path",
						slog.String("path", path),
						slog.String("error", err.Error()))
				}
				w.logger.Debug("monitored path removed",
					slog.String("path", path))
			}
			continue
		}
		if slices.Contains(w.watcher.WatchList(), path) {
			continue
		}
		if err = w.watcher.Add(path); err != nil {
			w.logger.Error("error adding monitored path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		w.logger.Debug("monitored path added",
			slog.String("path", path))
		var existingFilesAndDirectories []string
		if stat.IsDir() {
			pathEntries, err := os.ReadDir(path)
			if err != nil {
				w.logger.Error("error reading monitored path",
					slog.String("path", path),
					slog.String("error", err.Error()))
			}
			for _, entry := range pathEntries {
				existingFilesAndDirectories = append(existingFilesAndDirectories, filepath.Join(path, entry.Name()))
			}
		} else {
			existingFilesAndDirectories = append(existingFilesAndDirectories, path)
		}
		for _, handler := range handlers {
			w.trigger(eventTrigger{handler: handler, op: opBasePath, name: path}, stopCh)
			for _, existingPath := range existingFilesAndDirectories {
				if handler.Filter(existingPath) {
					w.trigger(eventTrigger{handler: handler, op: opCreate, name: existingPath}, stopCh)
				}
			}
		}
	}
}

// Add registers a handler for change notifications on the given path.
// The path does not need to exist yet: a watch is placed as soon as it
// shows up, and content already present is announced through OnCreate.
func (w *FileWatcher) Add(name string, handler FSChangeHandler) {
	w.runningLock.Lock()
	defer w.runningLock.Unlock()
	w.handlerLock.Lock()
	defer w.handlerLock.Unlock()
	w.logger.Debug("adding new handler",
		slog.String("path", name))
	w.handlerMap[name] = append(w.handlerMap[name], handler)
	if w.started {
		w.requestRefresh()
	}
}
