package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ogimage/common"
	"ogimage/generator"
)

// DefaultDebounce is how long a post must stay quiet before it is processed
const DefaultDebounce = 500 * time.Millisecond

// Processor handles one post bundle
type Processor interface {
	Post(dir string) generator.Post
	Process(ctx context.Context, post generator.Post) generator.Result
}

// Watcher monitors the content root and generates images for posts that
// appear or change while it runs
type Watcher struct {
	root      string
	inputName string
	Debounce  time.Duration

	proc    Processor
	watcher *fsnotify.Watcher
	ready   chan string
	events  chan generator.Result

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewWatcher creates a watcher for the posts under root
func NewWatcher(root, inputName string, proc Processor) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:      filepath.Clean(root),
		inputName: inputName,
		Debounce:  DefaultDebounce,
		proc:      proc,
		watcher:   fsWatcher,
		ready:     make(chan string, 100),
		events:    make(chan generator.Result, 100),
		pending:   make(map[string]*time.Timer),
	}, nil
}

// Start watches the content root and every existing post directory
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	if err := w.watcher.Add(w.root); err != nil {
		return common.FilesystemError("watch", w.root, err)
	}
	log.Printf("Watching folder: %s", w.root)

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return common.FilesystemError("read content root", w.root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(w.root, entry.Name())
		if err := w.watcher.Add(dir); err != nil {
			return common.FilesystemError("watch", dir, err)
		}
	}

	go w.processEvents()
	go w.work()
	return nil
}

// work processes ready posts one at a time
func (w *Watcher) work() {
	for {
		select {
		case dir := <-w.ready:
			w.handle(dir)
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if dir, ok := w.postFor(event); ok {
				w.schedule(dir)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)

		case <-w.ctx.Done():
			return
		}
	}
}

// postFor maps an fsnotify event to the post directory it concerns
func (w *Watcher) postFor(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	name := filepath.Clean(event.Name)
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return "", false
	}

	parent := filepath.Dir(name)
	switch {
	case parent == w.root:
		// a new post bundle; its document may already be inside
		info, err := os.Stat(name)
		if err != nil || !info.IsDir() {
			return "", false
		}
		if event.Has(fsnotify.Create) {
			if err := w.watcher.Add(name); err != nil {
				log.Printf("Failed to watch %s: %v", name, err)
			}
		}
		return name, true

	case filepath.Dir(parent) == w.root && base == w.inputName:
		return parent, true
	}
	return "", false
}

// schedule queues dir for processing once no event has touched it for Debounce
func (w *Watcher) schedule(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if timer, exists := w.pending[dir]; exists {
		timer.Stop()
	}
	w.pending[dir] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, dir)
		w.mu.Unlock()

		select {
		case w.ready <- dir:
		case <-w.ctx.Done():
		}
	})
}

func (w *Watcher) handle(dir string) {
	res := w.proc.Process(w.ctx, w.proc.Post(dir))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.events <- res:
	default:
		log.Printf("Event queue full, dropping result for %s", dir)
	}
}

// Events returns the results of posts processed by the watcher
func (w *Watcher) Events() <-chan generator.Result {
	return w.events
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for dir, timer := range w.pending {
		timer.Stop()
		delete(w.pending, dir)
	}
	close(w.events)
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	return w.watcher.Close()
}
