package types

import "time"

// Role tags the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. Immutable once created.
type Turn struct {
	// Unique turn identifier.
	// example: 9f1c8c2e-0b5a-4a1e-9b52-6d3f1a2b3c4d
	ID string `json:"id" example:"9f1c8c2e-0b5a-4a1e-9b52-6d3f1a2b3c4d"`
	// Speaker role: user or assistant.
	// example: user
	Role Role `json:"role" example:"user"`
	// Message text.
	// example: hello
	Text string `json:"text" example:"hello"`
	// Creation time.
	Timestamp time.Time `json:"timestamp"`
}

// SessionState is the authoritative lifecycle state of the chat session.
type SessionState string

const (
	StateInitializing SessionState = "initializing"
	StateReady        SessionState = "ready"
	StateGenerating   SessionState = "generating"
	StateError        SessionState = "error"
)

// ParameterSet is the validated bundle of generation options. A copy of it is
// taken at send time so concurrent edits never affect an in-flight request.
type ParameterSet struct {
	// Maximum number of new tokens to generate. Must be > 0.
	// example: 50
	MaxNewTokens int `json:"max_new_tokens" example:"50"`
	// Sampling temperature. Must be > 0.
	// example: 0.5
	Temperature float64 `json:"temperature" example:"0.5"`
	// Nucleus sampling probability, in (0, 1].
	// example: 0.9
	TopP float64 `json:"top_p" example:"0.9"`
	// Beam search width. Must be >= 1.
	// example: 2
	NumBeams int `json:"num_beams" example:"2"`
	// Whether to sample instead of greedy decoding.
	// example: true
	DoSample bool `json:"do_sample" example:"true"`
	// Whether the engine may truncate the prompt to fit its context window.
	// example: true
	Truncation bool `json:"truncation" example:"true"`
	// Whether beam search stops early when all beams finish.
	// example: true
	EarlyStopping bool `json:"early_stopping" example:"true"`
	// Per-field include switches. A field mapped to false is withheld from the
	// engine, which then applies its own default. Missing keys mean included.
	Include map[string]bool `json:"include,omitempty"`
}

// Artifact describes one model file in the local cache.
type Artifact struct {
	// Stable identifier (the cache filename).
	// example: tinyllama-1.1b-chat-q4_k_m.gguf
	ID string `json:"id" example:"tinyllama-1.1b-chat-q4_k_m.gguf"`
	// Absolute path on disk.
	// example: /home/user/.cache/wawachat/tinyllama-1.1b-chat-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/.cache/wawachat/tinyllama-1.1b-chat-q4_k_m.gguf"`
	// File size in MB.
	// example: 640
	SizeMB int `json:"size_mb" example:"640"`
	// Last modification time.
	ModTime time.Time `json:"mod_time"`
}
