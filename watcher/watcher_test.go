package watcher

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ogimage/config"
	"ogimage/generator"
)

type fakeRenderer struct{}

func (fakeRenderer) Compose(ctx context.Context, title, category string) ([]byte, error) {
	return []byte(title + "|" + category), nil
}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	cfg := config.Default()
	cfg.Content.Dir = root

	gen := generator.NewGenerator(cfg, fakeRenderer{})
	gen.SetLogger(log.New(io.Discard, "", 0))

	w, err := NewWatcher(root, cfg.Content.InputName, gen)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Debounce = 100 * time.Millisecond

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

// waitFor reads events until one for dir has the wanted outcome
func waitFor(t *testing.T, w *Watcher, dir string, want generator.Outcome) generator.Result {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case res, ok := <-w.Events():
			if !ok {
				t.Fatal("Event channel closed")
			}
			if res.Post.Dir == dir && res.Outcome == want {
				return res
			}
		case <-timeout:
			t.Fatalf("Timeout waiting for %s on %s", want, dir)
		}
	}
}

func TestWatcherGeneratesNewPost(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	dir := filepath.Join(root, "argocd-sync")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create post dir: %v", err)
	}
	content := "---\ntitle: ArgoCD Sync Waves\ncategories: [ArgoCD, GitOps]\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write post: %v", err)
	}

	res := waitFor(t, w, dir, generator.Generated)
	if res.Article == nil || res.Article.Category != "ArgoCD" {
		t.Errorf("Expected ArgoCD article, got %+v", res.Article)
	}

	data, err := os.ReadFile(filepath.Join(dir, "featured.png"))
	if err != nil {
		t.Fatalf("Expected featured.png: %v", err)
	}
	if string(data) != "ArgoCD Sync Waves|ArgoCD" {
		t.Errorf("Unexpected image bytes %q", data)
	}
}

func TestWatcherSkipsExistingImage(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "existing")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create post dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "featured.png"), []byte("keep"), 0644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	w := newTestWatcher(t, root)

	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte("---\ntitle: Edited\n---\n"), 0644); err != nil {
		t.Fatalf("Failed to write post: %v", err)
	}

	waitFor(t, w, dir, generator.SkippedExisting)
	if data, _ := os.ReadFile(filepath.Join(dir, "featured.png")); string(data) != "keep" {
		t.Errorf("Expected image untouched, got %q", data)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "post")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create post dir: %v", err)
	}

	w := newTestWatcher(t, root)

	for _, name := range []string{"notes.txt", ".index.md.swp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case res := <-w.Events():
		t.Errorf("Expected no events, got %s for %s", res.Outcome, res.Post.Dir)
	case <-time.After(500 * time.Millisecond):
	}
}

// slowProcessor records how many posts it handles at the same time
type slowProcessor struct {
	mu     sync.Mutex
	active int
	peak   int
}

func (p *slowProcessor) Post(dir string) generator.Post {
	return generator.NewPost(dir, "index.md", "featured.png")
}

func (p *slowProcessor) Process(ctx context.Context, post generator.Post) generator.Result {
	p.mu.Lock()
	p.active++
	if p.active > p.peak {
		p.peak = p.active
	}
	p.mu.Unlock()

	time.Sleep(150 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	return generator.Result{Post: post, Outcome: generator.Generated}
}

func TestWatcherProcessesPostsOneAtATime(t *testing.T) {
	root := t.TempDir()
	proc := &slowProcessor{}

	w, err := NewWatcher(root, "index.md", proc)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Debounce = 50 * time.Millisecond
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	for _, name := range []string{"first", "second", "third"} {
		dir := filepath.Join(root, name)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatalf("Failed to create post dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte("---\ntitle: "+name+"\n---\n"), 0644); err != nil {
			t.Fatalf("Failed to write post: %v", err)
		}
	}

	seen := make(map[string]bool)
	timeout := time.After(5 * time.Second)
	for len(seen) < 3 {
		select {
		case res := <-w.Events():
			seen[res.Post.Dir] = true
		case <-timeout:
			t.Fatalf("Timeout after %d posts", len(seen))
		}
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if proc.peak != 1 {
		t.Errorf("Expected one post processed at a time, got %d concurrently", proc.peak)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w := newTestWatcher(t, t.TempDir())
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Expected second Stop to be a no-op, got %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Expected closed event channel")
	}
}

func TestStartMissingRoot(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), "index.md", nil)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); err == nil {
		t.Error("Expected error for missing root")
	}
}
