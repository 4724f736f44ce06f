// Package session implements the generation session manager: the single
// owner of the conversation buffer, the active parameter set, and the model
// lifecycle. It serializes generation strictly (one in-flight request,
// concurrent sends are rejected rather than queued) and reports transitions
// through an EventPublisher.
package session

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"wawachat/internal/engine"
	"wawachat/internal/loader"
	"wawachat/pkg/types"
)

// Config holds session construction options.
type Config struct {
	Loader    *loader.Loader
	Publisher EventPublisher
	// Params overrides the default parameter set when non-nil.
	Params *Params
}

// Session is the generation session manager. One per process.
type Session struct {
	mu        sync.RWMutex
	state     types.SessionState
	lastErr   string
	params    Params
	conv      Conversation
	ldr       *loader.Loader
	pub       EventPublisher
	genID     uint64
	cancelGen context.CancelFunc
	startTime time.Time
}

// New constructs a Session in the Initializing state. Call Start to kick off
// the background model load.
func New(cfg Config) *Session {
	s := &Session{
		state:     types.StateInitializing,
		params:    DefaultParams(),
		ldr:       cfg.Loader,
		pub:       cfg.Publisher,
		startTime: time.Now(),
	}
	if cfg.Params != nil {
		s.params = *cfg.Params
	}
	if s.pub == nil {
		s.pub = noopPublisher{}
	}
	return s
}

// Start launches the model load in the background so the shell is never
// blocked on it. Safe to call again after Reset.
func (s *Session) Start(ctx context.Context) {
	go s.runLoad(ctx)
}

func (s *Session) runLoad(ctx context.Context) {
	_, err := s.ldr.Load(ctx)
	s.mu.Lock()
	if s.state != types.StateInitializing {
		// A reset or racing load already moved the state machine on.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = types.StateError
		s.lastErr = err.Error()
	} else {
		s.state = types.StateReady
		s.lastErr = ""
	}
	st := s.state
	s.mu.Unlock()
	if err != nil {
		s.pub.Publish(Event{Name: EventError, Fields: map[string]any{"kind": "model_load", "error": err.Error()}})
	}
	s.publishState(st)
}

// State returns the authoritative session state.
func (s *Session) State() types.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status builds the detailed status view for the shell.
func (s *Session) Status() types.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := types.StatusResponse{
		State:     s.state,
		Turns:     s.conv.Len(),
		Error:     s.lastErr,
		Params:    s.params.Snapshot(),
		UptimeSec: int64(time.Since(s.startTime).Seconds()),
	}
	if h := s.ldr.Handle(); h != nil {
		resp.Model = h.Artifact().ID
	}
	return resp
}

// Conversation returns a copy of the turn history.
func (s *Session) Conversation() []types.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv.Turns()
}

// Params returns a snapshot of the active parameter set.
func (s *Session) Params() types.ParameterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.Snapshot()
}

// UpdateParam applies one validated parameter edit. On rejection the active
// set is untouched and the validation error describes the violation.
func (s *Session) UpdateParam(field string, value any) error {
	s.mu.Lock()
	err := s.params.Update(field, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.pub.Publish(Event{Name: EventParamsEdited, Fields: map[string]any{"field": field}})
	return nil
}

// Clear empties the conversation buffer. Rejected while generating so the
// in-flight prompt is never pulled out from under the engine.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.state == types.StateGenerating {
		s.mu.Unlock()
		return busyError{op: "clear"}
	}
	s.conv.Clear()
	s.mu.Unlock()
	s.pub.Publish(Event{Name: EventCleared})
	return nil
}

// Send appends the user turn, snapshots the parameters, and runs one
// generation. Tokens stream to w as NDJSON lines when w is non-nil; the final
// line carries the completed assistant turn. Strictly serialized: a send
// while one is outstanding fails with a busy error and does not touch the
// buffer. On inference failure the user turn is retained, no assistant turn
// is appended, and the session moves to the error state.
func (s *Session) Send(ctx context.Context, text string, w io.Writer, flush func()) (types.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Turn{}, ErrValidation("text", ReasonOutOfRange)
	}

	s.mu.Lock()
	switch s.state {
	case types.StateGenerating:
		s.mu.Unlock()
		return types.Turn{}, busyError{op: "send"}
	case types.StateInitializing, types.StateError:
		st := s.state
		s.mu.Unlock()
		return types.Turn{}, notReadyError{state: string(st)}
	}
	h := s.ldr.Handle()
	if h == nil {
		st := s.state
		s.mu.Unlock()
		return types.Turn{}, notReadyError{state: string(st)}
	}
	userTurn := NewTurn(types.RoleUser, text)
	s.conv.Append(userTurn)
	prompt := s.conv.RenderPrompt()
	snap := s.params.Snapshot()
	s.state = types.StateGenerating
	s.genID++
	id := s.genID
	gctx, cancel := context.WithCancel(ctx)
	s.cancelGen = cancel
	s.mu.Unlock()

	s.publishTurn(userTurn)
	s.publishState(types.StateGenerating)

	onToken := func(tok string) error {
		if w == nil {
			return nil
		}
		if _, err := w.Write(tokenLineJSON(tok)); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
		return nil
	}
	res, genErr := h.Engine().Generate(gctx, prompt, engineParams(snap), onToken)
	cancel()

	s.mu.Lock()
	if s.genID != id {
		// Cancel already restored the state and discarded this result.
		s.mu.Unlock()
		return types.Turn{}, canceledError{}
	}
	s.cancelGen = nil
	if genErr != nil {
		if gctx.Err() != nil {
			// Caller went away mid-generation; suppress rather than fail.
			s.state = types.StateReady
			s.mu.Unlock()
			s.publishState(types.StateReady)
			return types.Turn{}, canceledError{}
		}
		s.state = types.StateError
		s.lastErr = genErr.Error()
		s.mu.Unlock()
		s.pub.Publish(Event{Name: EventError, Fields: map[string]any{"kind": "generation", "error": genErr.Error()}})
		s.publishState(types.StateError)
		return types.Turn{}, generationError{cause: genErr}
	}
	asst := NewTurn(types.RoleAssistant, trimResponse(res.Text))
	s.conv.Append(asst)
	s.state = types.StateReady
	s.mu.Unlock()

	s.publishTurn(asst)
	s.publishState(types.StateReady)

	if w != nil {
		end := map[string]any{"done": true, "turn": asst}
		if jb, err := json.Marshal(end); err == nil {
			_, _ = w.Write(append(jb, '\n'))
			if flush != nil {
				flush()
			}
		}
	}
	return asst, nil
}

// Cancel requests cooperative interruption of the in-flight generation.
// Best-effort and non-blocking: the engine stops at its next token boundary,
// and however late the result arrives it is discarded. The user turn already
// appended is retained. No-op outside the generating state.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state != types.StateGenerating {
		s.mu.Unlock()
		return
	}
	s.genID++ // suppress the in-flight result
	s.state = types.StateReady
	cancel := s.cancelGen
	s.cancelGen = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.publishState(types.StateReady)
}

// Reset returns an errored session to Initializing and relaunches the load.
// The only path out of the error state.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.state == types.StateGenerating {
		s.mu.Unlock()
		return busyError{op: "reset"}
	}
	if err := s.ldr.Reset(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = types.StateInitializing
	s.lastErr = ""
	s.mu.Unlock()
	s.publishState(types.StateInitializing)
	s.Start(ctx)
	return nil
}

func (s *Session) publishState(st types.SessionState) {
	s.pub.Publish(Event{Name: EventStateChanged, Fields: map[string]any{"state": string(st)}})
}

func (s *Session) publishTurn(t types.Turn) {
	s.pub.Publish(Event{Name: EventTurnAdded, Fields: map[string]any{"turn": t}})
}

// trimResponse cuts the assistant text at the first end-of-sequence marker
// the model sometimes echoes past its stop point.
func trimResponse(text string) string {
	if i := strings.Index(text, "</s>"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// engineParams converts a parameter snapshot into the engine's request form.
func engineParams(p types.ParameterSet) engine.Params {
	return engine.Params{
		MaxNewTokens:  p.MaxNewTokens,
		Temperature:   p.Temperature,
		TopP:          p.TopP,
		NumBeams:      p.NumBeams,
		DoSample:      p.DoSample,
		Truncation:    p.Truncation,
		EarlyStopping: p.EarlyStopping,
		Include:       p.Include,
	}
}

// tokenLineJSON formats a token NDJSON line using json.Marshal for correctness.
func tokenLineJSON(tok string) []byte {
	type tokenMsg struct {
		Token string `json:"token"`
	}
	b, _ := json.Marshal(tokenMsg{Token: tok})
	return append(b, '\n')
}
