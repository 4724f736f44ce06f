// Package engine abstracts the inference runtime behind a small interface so
// the session layer never depends on a concrete backend. The real llama.cpp
// implementation is compiled in with the 'llama' build tag; default builds get
// a stub that fails fast instead of mocking output.
package engine

import "context"

// Params captures the generation options passed to a backend for one request.
// Fields mirror the session parameter set; Include withholds individual fields
// so the backend falls back to its own default for them.
type Params struct {
	MaxNewTokens  int
	Temperature   float64
	TopP          float64
	NumBeams      int
	DoSample      bool
	Truncation    bool
	EarlyStopping bool
	Include       map[string]bool
}

// Included reports whether the named field should be forwarded to the backend.
// A nil map or a missing key means included.
func (p Params) Included(field string) bool {
	if p.Include == nil {
		return true
	}
	v, ok := p.Include[field]
	return !ok || v
}

// Result summarizes a completed generation.
type Result struct {
	Text         string
	FinishReason string
	Tokens       int
}

// Engine is a loaded inference runtime. Implementations must return promptly
// when the context is canceled; partial output is discarded by the caller.
type Engine interface {
	// Generate produces a completion for prompt. onToken, when non-nil, is
	// invoked for each streamed token; returning an error from it stops
	// generation.
	Generate(ctx context.Context, prompt string, params Params, onToken func(string) error) (Result, error)
	// Close releases backend resources.
	Close() error
}

// Config holds backend tunables set at open time.
type Config struct {
	CtxSize int
	Threads int
}

// OpenFunc opens an engine for the model file at path. The loader holds one
// of these so tests can substitute a fake backend.
type OpenFunc func(path string, cfg Config) (Engine, error)
