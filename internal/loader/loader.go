// Package loader owns the model initialization lifecycle: a one-shot
// asynchronous load producing a process-lifetime inference handle. Repeated
// or concurrent Load calls share the single pending attempt; a failed load is
// never retried without an explicit Reset, since re-downloading large
// artifacts is costly.
package loader

import (
	"context"
	"fmt"
	"sync"

	"wawachat/internal/common/fsutil"
	"wawachat/internal/engine"
	"wawachat/internal/hub"
	"wawachat/pkg/types"
)

// State is the loader lifecycle state.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// FetchFunc downloads an artifact into the cache and returns its ID. The
// default build has no remote transport and fails with a network cause;
// callers that embed a real downloader install their own.
type FetchFunc func(ctx context.Context, model, token string) (string, error)

// Config holds the loader tunables.
type Config struct {
	// Cache resolves model artifacts on disk.
	Cache *hub.Cache
	// Model is the artifact ID to load.
	Model string
	// Token authorizes fetching an uncached artifact. Empty is fine when the
	// artifact is already cached.
	Token string
	// Engine tunables passed to Open.
	Engine engine.Config
	// Open opens the backend for a model path. Defaults to the llama backend.
	Open engine.OpenFunc
	// Fetch downloads an uncached artifact. Defaults to unavailable.
	Fetch FetchFunc
}

// Handle is the ready-to-use inference handle produced by a successful load.
type Handle struct {
	artifact types.Artifact
	eng      engine.Engine
}

// Artifact returns the loaded model artifact.
func (h *Handle) Artifact() types.Artifact { return h.artifact }

// Engine returns the backend runtime.
func (h *Handle) Engine() engine.Engine { return h.eng }

// Close releases the backend.
func (h *Handle) Close() error { return h.eng.Close() }

// Loader performs the one-shot load.
type Loader struct {
	cfg Config

	mu     sync.Mutex
	state  State
	done   chan struct{} // closed when the in-flight attempt finishes
	handle *Handle
	err    error
}

// New constructs an unloaded Loader.
func New(cfg Config) *Loader {
	if cfg.Open == nil {
		cfg.Open = engine.OpenLlama
	}
	if cfg.Fetch == nil {
		cfg.Fetch = fetchUnavailable
	}
	return &Loader{cfg: cfg, state: StateUnloaded}
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Handle returns the cached handle, or nil before a successful load.
func (l *Loader) Handle() *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle
}

// Load returns the ready handle, starting the load on first call. Concurrent
// callers while Loading wait on the same attempt rather than starting another.
// After a failure every call returns the recorded error until Reset.
func (l *Loader) Load(ctx context.Context) (*Handle, error) {
	l.mu.Lock()
	switch l.state {
	case StateReady:
		h := l.handle
		l.mu.Unlock()
		return h, nil
	case StateFailed:
		err := l.err
		l.mu.Unlock()
		return nil, err
	case StateLoading:
		done := l.done
		l.mu.Unlock()
		select {
		case <-done:
			return l.Load(ctx)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	// Unloaded: this caller performs the attempt.
	l.state = StateLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	h, err := l.attempt(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = StateFailed
		l.err = err
	} else {
		l.state = StateReady
		l.handle = h
	}
	close(done)
	l.mu.Unlock()
	return h, err
}

// Reset returns a Ready or Failed loader to Unloaded and closes any held
// handle. Resetting while a load is in flight is refused.
func (l *Loader) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateLoading {
		return loadPendingError{}
	}
	if l.handle != nil {
		_ = l.handle.Close()
		l.handle = nil
	}
	l.state = StateUnloaded
	l.err = nil
	return nil
}

// attempt resolves the artifact and opens the backend. Runs without the lock.
func (l *Loader) attempt(ctx context.Context) (*Handle, error) {
	if l.cfg.Model == "" {
		return nil, ErrLoad(CauseUnknown, "no model configured")
	}
	art, ok, err := l.cfg.Cache.Resolve(l.cfg.Model)
	if err != nil {
		return nil, ErrLoad(CauseUnknown, err.Error())
	}
	if !ok {
		// Uncached artifact: the token gate comes first so a missing
		// credential surfaces at load time, not on first generation.
		if l.cfg.Token == "" {
			return nil, ErrLoad(CauseAuth, fmt.Sprintf("artifact %q not cached and no access token configured", l.cfg.Model))
		}
		id, err := l.cfg.Fetch(ctx, l.cfg.Model, l.cfg.Token)
		if err != nil {
			return nil, ErrLoad(CauseNetwork, err.Error())
		}
		l.cfg.Cache.Invalidate()
		art, ok, err = l.cfg.Cache.Resolve(id)
		if err != nil || !ok {
			return nil, ErrLoad(CauseNetwork, fmt.Sprintf("fetched artifact %q missing from cache", id))
		}
	}
	if ctx.Err() != nil {
		return nil, ErrLoad(CauseUnknown, ctx.Err().Error())
	}
	// The scan can be stale; re-check the file before handing it to the backend.
	if !fsutil.PathExists(art.Path) {
		return nil, ErrLoad(CauseUnknown, fmt.Sprintf("artifact file %q no longer exists", art.Path))
	}
	eng, err := l.cfg.Open(art.Path, l.cfg.Engine)
	if err != nil {
		if engine.IsNotBuilt(err) {
			return nil, ErrLoad(CauseIncompatible, err.Error())
		}
		return nil, ErrLoad(CauseUnknown, err.Error())
	}
	return &Handle{artifact: art, eng: eng}, nil
}

func fetchUnavailable(ctx context.Context, model, token string) (string, error) {
	return "", fmt.Errorf("remote fetch not available in this build")
}
