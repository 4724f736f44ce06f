package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wawachat/internal/engine"
	"wawachat/internal/httpapi"
	"wawachat/internal/hub"
	"wawachat/internal/loader"
	"wawachat/internal/session"
)

// echoEngine streams a fixed token sequence and returns their concatenation.
type echoEngine struct {
	tokens []string
}

func (e *echoEngine) Generate(ctx context.Context, prompt string, params engine.Params, onToken func(string) error) (engine.Result, error) {
	for _, tok := range e.tokens {
		if err := ctx.Err(); err != nil {
			return engine.Result{}, err
		}
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return engine.Result{}, err
			}
		}
	}
	return engine.Result{Text: strings.Join(e.tokens, ""), FinishReason: "stop", Tokens: len(e.tokens)}, nil
}

func (e *echoEngine) Close() error { return nil }

// newServer spins up the full HTTP stack against a temp cache with one fake
// artifact and an in-process engine, then waits until the session is ready.
func newServer(t *testing.T, eng engine.Engine) (*httptest.Server, *session.Session) {
	t.Helper()
	dir := t.TempDir()
	const model = "tiny.gguf"
	if err := os.WriteFile(filepath.Join(dir, model), []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	cache, err := hub.New(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	ldr := loader.New(loader.Config{
		Cache: cache,
		Model: model,
		Open: func(path string, cfg engine.Config) (engine.Engine, error) {
			return eng, nil
		},
	})
	events := httpapi.NewBroadcaster()
	sess := session.New(session.Config{Loader: ldr, Publisher: events})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sess.Start(ctx)

	srv := httptest.NewServer(httpapi.NewMux(sess, cache, httpapi.Options{Events: events}))
	t.Cleanup(srv.Close)
	waitReady(t, srv)
	return srv, sess
}

func waitReady(t *testing.T, srv *httptest.Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session never became ready")
}
