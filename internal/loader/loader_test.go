package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wawachat/internal/engine"
	"wawachat/internal/hub"
)

// fakeEngine satisfies engine.Engine without a real backend.
type fakeEngine struct{ closed bool }

func (f *fakeEngine) Generate(ctx context.Context, prompt string, params engine.Params, onToken func(string) error) (engine.Result, error) {
	return engine.Result{Text: "ok"}, nil
}
func (f *fakeEngine) Close() error { f.closed = true; return nil }

func newTestCache(t *testing.T, artifacts ...string) *hub.Cache {
	t.Helper()
	dir := t.TempDir()
	for _, name := range artifacts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("gguf"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
	}
	c, err := hub.New(dir)
	if err != nil {
		t.Fatalf("hub.New: %v", err)
	}
	return c
}

func TestLoadSuccessCachesHandle(t *testing.T) {
	cache := newTestCache(t, "model.gguf")
	var opens int32
	l := New(Config{
		Cache: cache,
		Model: "model.gguf",
		Open: func(path string, cfg engine.Config) (engine.Engine, error) {
			atomic.AddInt32(&opens, 1)
			return &fakeEngine{}, nil
		},
	})
	h1, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.State() != StateReady {
		t.Fatalf("expected ready, got %s", l.State())
	}
	if h1.Artifact().ID != "model.gguf" {
		t.Fatalf("unexpected artifact: %+v", h1.Artifact())
	}
	h2, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected the cached handle to be reused")
	}
	if n := atomic.LoadInt32(&opens); n != 1 {
		t.Fatalf("expected 1 open, got %d", n)
	}
}

func TestLoadAuthErrorWhenUncachedAndNoToken(t *testing.T) {
	l := New(Config{Cache: newTestCache(t), Model: "missing.gguf"})
	_, err := l.Load(context.Background())
	cause, ok := IsLoadError(err)
	if !ok || cause != CauseAuth {
		t.Fatalf("expected auth cause, got %v", err)
	}
	if l.State() != StateFailed {
		t.Fatalf("expected failed, got %s", l.State())
	}
	// No silent retry: the recorded error comes back unchanged.
	_, err2 := l.Load(context.Background())
	if !errors.Is(err2, err) && err2.Error() != err.Error() {
		t.Fatalf("expected the recorded error, got %v", err2)
	}
}

func TestLoadNetworkErrorWhenFetchUnavailable(t *testing.T) {
	l := New(Config{Cache: newTestCache(t), Model: "missing.gguf", Token: "tok"})
	_, err := l.Load(context.Background())
	cause, ok := IsLoadError(err)
	if !ok || cause != CauseNetwork {
		t.Fatalf("expected network cause, got %v", err)
	}
}

func TestLoadIncompatibleWhenBackendNotBuilt(t *testing.T) {
	cache := newTestCache(t, "model.gguf")
	// Default Open is the llama stub in CGO-free builds.
	l := New(Config{Cache: cache, Model: "model.gguf"})
	_, err := l.Load(context.Background())
	cause, ok := IsLoadError(err)
	if !ok || cause != CauseIncompatible {
		t.Fatalf("expected incompatible cause, got %v", err)
	}
}

func TestConcurrentLoadSharesAttempt(t *testing.T) {
	cache := newTestCache(t, "model.gguf")
	release := make(chan struct{})
	var opens int32
	l := New(Config{
		Cache: cache,
		Model: "model.gguf",
		Open: func(path string, cfg engine.Config) (engine.Engine, error) {
			atomic.AddInt32(&opens, 1)
			<-release
			return &fakeEngine{}, nil
		},
	})
	var wg sync.WaitGroup
	handles := make([]*Handle, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := l.Load(context.Background())
			if err != nil {
				t.Errorf("load %d: %v", i, err)
				return
			}
			handles[i] = h
		}(i)
	}
	// Let the callers pile up on the pending attempt before releasing it.
	time.Sleep(50 * time.Millisecond)
	if l.State() != StateLoading {
		t.Fatalf("expected loading, got %s", l.State())
	}
	close(release)
	wg.Wait()
	if n := atomic.LoadInt32(&opens); n != 1 {
		t.Fatalf("expected 1 open for concurrent loads, got %d", n)
	}
	for i := 1; i < 4; i++ {
		if handles[i] != handles[0] {
			t.Fatalf("caller %d got a different handle", i)
		}
	}
}

func TestResetLifecycle(t *testing.T) {
	cache := newTestCache(t)
	l := New(Config{Cache: cache, Model: "missing.gguf"})
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatalf("expected load failure")
	}
	if err := l.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if l.State() != StateUnloaded {
		t.Fatalf("expected unloaded after reset, got %s", l.State())
	}

	// Reset during an in-flight load is refused.
	release := make(chan struct{})
	l2 := New(Config{
		Cache: newTestCache(t, "model.gguf"),
		Model: "model.gguf",
		Open: func(path string, cfg engine.Config) (engine.Engine, error) {
			<-release
			return &fakeEngine{}, nil
		},
	})
	go func() { _, _ = l2.Load(context.Background()) }()
	time.Sleep(50 * time.Millisecond)
	if err := l2.Reset(); !IsLoadPending(err) {
		t.Fatalf("expected load-pending error, got %v", err)
	}
	close(release)
}

func TestLoadFailsWhenArtifactVanishes(t *testing.T) {
	cache := newTestCache(t, "model.gguf")
	// Warm the scan, then remove the file behind the cache's back.
	arts, err := cache.List()
	if err != nil || len(arts) != 1 {
		t.Fatalf("list: %v (%d artifacts)", err, len(arts))
	}
	if err := os.Remove(arts[0].Path); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}

	var opens int32
	l := New(Config{
		Cache: cache,
		Model: "model.gguf",
		Open: func(path string, cfg engine.Config) (engine.Engine, error) {
			atomic.AddInt32(&opens, 1)
			return &fakeEngine{}, nil
		},
	})
	_, err = l.Load(context.Background())
	cause, ok := IsLoadError(err)
	if !ok || cause != CauseUnknown {
		t.Fatalf("expected unknown-cause load error, got %v", err)
	}
	if atomic.LoadInt32(&opens) != 0 {
		t.Fatalf("backend opened for a missing file")
	}
	if l.State() != StateFailed {
		t.Fatalf("expected failed, got %s", l.State())
	}
}

func TestResetClosesHandle(t *testing.T) {
	cache := newTestCache(t, "model.gguf")
	fe := &fakeEngine{}
	l := New(Config{
		Cache: cache,
		Model: "model.gguf",
		Open:  func(path string, cfg engine.Config) (engine.Engine, error) { return fe, nil },
	})
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := l.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !fe.closed {
		t.Fatalf("expected engine closed on reset")
	}
}
