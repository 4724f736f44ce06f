package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wawachat/internal/session"
	"wawachat/pkg/types"
)

// Service defines the session operations required by the HTTP API layer.
type Service interface {
	Send(ctx context.Context, text string, w io.Writer, flush func()) (types.Turn, error)
	Cancel()
	Clear() error
	Reset(ctx context.Context) error
	State() types.SessionState
	Status() types.StatusResponse
	Conversation() []types.Turn
	Params() types.ParameterSet
	UpdateParam(field string, value any) error
}

// ModelStore defines the cache operations exposed under /models.
type ModelStore interface {
	List() ([]types.Artifact, error)
	TotalSizeMB() (int, error)
	Delete(id string) error
	Clear() error
	ExportJSON(w io.Writer) error
}

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// Options tunes the mux construction.
type Options struct {
	// UIOrigins are origins allowed to call the API cross-origin (the
	// desktop shell's dev server, typically). Empty disables CORS.
	UIOrigins []string
	// Events, when non-nil, is mounted at GET /events.
	Events *Broadcaster
}

// NewMux builds the chat API router.
func NewMux(svc Service, store ModelStore, opts Options) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if len(opts.UIOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.UIOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Log-Level"},
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/send", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.SendRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeJSONError(w, http.StatusBadRequest, "text is required")
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		logSend(r, lvl, "send start")

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		var turn types.Turn
		var err error
		var clw *countingLineWriter
		if req.Stream {
			w.Header().Set("Content-Type", "application/x-ndjson")
			var flush func()
			if f, ok := w.(http.Flusher); ok {
				flush = f.Flush
			}
			clw = &countingLineWriter{w: w}
			writer := io.Writer(clw)
			if lvl >= LevelDebug {
				writer = io.MultiWriter(writer, &loggingLineWriter{})
			}
			turn, err = svc.Send(joinedCtx, req.Text, writer, flush)
		} else {
			turn, err = svc.Send(joinedCtx, req.Text, nil, nil)
		}
		streamed := clw != nil && clw.bytes > 0
		if err != nil {
			if session.IsCanceled(err) || r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				observeGeneration("canceled", start)
				logSendEnd(r, lvl, 0, start, err)
				if streamed {
					writeNDJSONLine(w, map[string]any{"canceled": true})
					return
				}
				writeJSON(w, map[string]any{"canceled": true})
				return
			}
			status := statusFor(err)
			if status == http.StatusConflict || status == http.StatusServiceUnavailable {
				observeGeneration("rejected", start)
			} else {
				observeGeneration("error", start)
			}
			if streamed {
				// Tokens already went out; the status line is spent, so the
				// failure travels as a final NDJSON line instead.
				writeNDJSONLine(w, map[string]any{"error": err.Error(), "code": status})
			} else {
				writeJSONError(w, status, err.Error())
			}
			logSendEnd(r, lvl, status, start, err)
			return
		}
		observeGeneration("ok", start)
		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(turn); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
				return
			}
		}
		logSendEnd(r, lvl, http.StatusOK, start, nil)
	})

	r.Post("/cancel", func(w http.ResponseWriter, r *http.Request) {
		svc.Cancel()
		w.WriteHeader(http.StatusAccepted)
	})

	r.Post("/clear", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(serverBaseCtx); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.StateResponse{State: svc.State()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/conversation", func(w http.ResponseWriter, r *http.Request) {
		turns := svc.Conversation()
		if turns == nil {
			turns = []types.Turn{}
		}
		writeJSON(w, types.ConversationResponse{Turns: turns})
	})

	r.Get("/params", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Params())
	})

	r.Patch("/params", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeJSON[types.UpdateParamRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.Field) == "" {
			writeJSONError(w, http.StatusBadRequest, "field is required")
			return
		}
		if err := svc.UpdateParam(req.Field, req.Value); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, svc.Params())
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		models, err := store.List()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		total, err := store.TotalSizeMB()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if models == nil {
			models = []types.Artifact{}
		}
		writeJSON(w, types.ModelsResponse{Models: models, TotalMB: total})
	})

	r.Get("/models/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="models.json"`)
		if err := store.ExportJSON(w); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
	})

	r.Delete("/models", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/models/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(id); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.State() == types.StateReady {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(string(svc.State())))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and size limits, then decodes the body.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return req, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// MaxBytesReader errors land here too; return 400 without size details.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

// writeNDJSONLine appends one JSON line to an already-flowing NDJSON stream.
func writeNDJSONLine(w http.ResponseWriter, v any) {
	jb, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write(append(jb, '\n'))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

func logSend(r *http.Request, lvl LogLevel, msg string) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg(msg)
		return
	}
	log.Printf("%s path=%s", msg, r.URL.Path)
}

func logSendEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("send end")
		return
	}
	log.Printf("send end status=%d dur=%s err=%v", status, time.Since(start), err)
}
