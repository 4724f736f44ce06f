package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wawachat/internal/config"
	"wawachat/internal/engine"
	"wawachat/internal/httpapi"
	"wawachat/internal/hub"
	"wawachat/internal/loader"
	"wawachat/internal/session"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	cfg := config.Config{
		Addr:     envOr("WAWACHAT_ADDR", ":8090"),
		CacheDir: envOr("WAWACHAT_CACHE_DIR", "~/.cache/wawachat"),
		Model:    os.Getenv("WAWACHAT_MODEL"),
		LogLevel: envOr("WAWACHAT_LOG_LEVEL", "info"),
		CtxSize:  2048,
	}
	var configPath string

	root := &cobra.Command{
		Use:           "wawachat",
		Short:         "Local single-session chat daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				merge(&cfg, fileCfg, cmd)
			}
			return run(cfg)
		},
	}

	root.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address, e.g. :8090")
	root.Flags().StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "Directory holding *.gguf model artifacts")
	root.Flags().StringVar(&cfg.Model, "model", cfg.Model, "Model artifact id to load at startup")
	root.Flags().StringVar(&cfg.Token, "token", cfg.Token, "Access token for fetching uncached models")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	root.Flags().IntVar(&cfg.CtxSize, "ctx-size", cfg.CtxSize, "Model context window size")
	root.Flags().IntVar(&cfg.Threads, "threads", cfg.Threads, "Inference threads (0=auto)")
	root.Flags().StringSliceVar(&cfg.UIOrigins, "ui-origin", cfg.UIOrigins, "Allowed CORS origin for the UI shell (repeatable)")
	root.Flags().StringVar(&configPath, "config", "", "Path to a yaml/json/toml config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wawachat:", err)
		os.Exit(1)
	}
}

// merge overlays file config under flag values: flags explicitly set on the
// command line win, everything else comes from the file.
func merge(dst *config.Config, file config.Config, cmd *cobra.Command) {
	if !cmd.Flags().Changed("addr") && file.Addr != "" {
		dst.Addr = file.Addr
	}
	if !cmd.Flags().Changed("cache-dir") && file.CacheDir != "" {
		dst.CacheDir = file.CacheDir
	}
	if !cmd.Flags().Changed("model") && file.Model != "" {
		dst.Model = file.Model
	}
	if !cmd.Flags().Changed("token") && file.Token != "" {
		dst.Token = file.Token
	}
	if !cmd.Flags().Changed("log-level") && file.LogLevel != "" {
		dst.LogLevel = file.LogLevel
	}
	if !cmd.Flags().Changed("ctx-size") && file.CtxSize != 0 {
		dst.CtxSize = file.CtxSize
	}
	if !cmd.Flags().Changed("threads") && file.Threads != 0 {
		dst.Threads = file.Threads
	}
	if !cmd.Flags().Changed("ui-origin") && len(file.UIOrigins) != 0 {
		dst.UIOrigins = file.UIOrigins
	}
}

func run(cfg config.Config) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).With().Timestamp().Logger()
	httpapi.SetLogger(logger)

	if cfg.Model == "" {
		return fmt.Errorf("no model configured: pass --model or set WAWACHAT_MODEL")
	}

	cache, err := hub.New(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("open model cache: %w", err)
	}
	watcher, err := hub.NewWatcher(cache)
	if err != nil {
		logger.Warn().Err(err).Msg("cache watcher unavailable, listings may go stale")
	} else {
		defer watcher.Close()
	}

	ldr := loader.New(loader.Config{
		Cache:  cache,
		Model:  cfg.Model,
		Token:  hub.ResolveToken(cfg.Token),
		Engine: engine.Config{CtxSize: cfg.CtxSize, Threads: cfg.Threads},
	})

	events := httpapi.NewBroadcaster()
	sess := session.New(session.Config{Loader: ldr, Publisher: events})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	sess.Start(baseCtx)

	mux := httpapi.NewMux(sess, cache, httpapi.Options{UIOrigins: cfg.UIOrigins, Events: events})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("model", cfg.Model).Str("cache", cache.Dir()).
			Msg("wawachat listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Cancel in-flight generation, then drain HTTP.
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	return nil
}
