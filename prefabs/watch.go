package prefabs

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a file the watcher reported.
type ChangeKind int

const (
	ChangeSpec ChangeKind = iota
	ChangeScript
	ChangeLevel
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSpec:
		return "spec"
	case ChangeScript:
		return "script"
	case ChangeLevel:
		return "level"
	}
	return "unknown"
}

type Change struct {
	Path string
	Kind ChangeKind
}

// Quiet period after the last write before a change is reported. Editors
// often save in several steps; only the settled file is interesting.
const watchDebounce = 100 * time.Millisecond

// Watcher reports settled edits to specs, anchor scripts and level files.
type Watcher struct {
	fs      *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// DefaultWatchDirs are the disk override directories used by the loaders.
func DefaultWatchDirs() []string {
	return []string{"prefabs", filepath.Join("prefabs", "scenarios"), filepath.Join("prefabs", "scripts"), "levels"}
}

func NewWatcher(dirs ...string) (*Watcher, error) {
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
		fs:      fw,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and closes both channels. It is safe to call more
// than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]ChangeKind)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			kind, ok := classify(ev.Name)
			if !ok {
				continue
			}
			pending[ev.Name] = kind
			timer.Reset(watchDebounce)
		case <-timer.C:
			if !w.flush(pending) {
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// flush emits pending changes in path order. It returns false when the
// watcher closed mid-flush.
func (w *Watcher) flush(pending map[string]ChangeKind) bool {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		select {
		case w.Events <- Change{Path: p, Kind: pending[p]}:
		case <-w.closeCh:
			return false
		}
		delete(pending, p)
	}
	return true
}

func classify(path string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ChangeSpec, true
	case ".tengo":
		return ChangeScript, true
	case ".json":
		return ChangeLevel, true
	}
	return 0, false
}
