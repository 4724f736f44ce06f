package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\ncache_dir: /tmp\nmodel: m1.gguf\ntoken: tok\nlog_level: debug\nctx_size: 2048\nthreads: 4\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.CacheDir != "/tmp" || cfg.Model != "m1.gguf" || cfg.Token != "tok" || cfg.LogLevel != "debug" || cfg.CtxSize != 2048 || cfg.Threads != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","cache_dir":"/m","model":"m2.gguf","ui_origins":["http://localhost:5173"]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.CacheDir != "/m" || cfg.Model != "m2.gguf" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.UIOrigins) != 1 || cfg.UIOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %+v", cfg.UIOrigins)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ncache_dir=\"/x\"\nmodel=\"m3.gguf\"\nthreads=2\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.CacheDir != "/x" || cfg.Model != "m3.gguf" || cfg.Threads != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
