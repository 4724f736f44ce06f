package types

// SendRequest is the payload for POST /send.
type SendRequest struct {
	// Required message text to send to the model.
	// example: Write a haiku about the ocean.
	Text string `json:"text" example:"Write a haiku about the ocean."`
	// If true, stream tokens as NDJSON lines before the final turn line.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
}

// UpdateParamRequest is the payload for PATCH /params. Value types depend on
// the field: integers and floats arrive as JSON numbers, booleans as JSON
// booleans. Include switches use field names prefixed with "include.".
type UpdateParamRequest struct {
	// Parameter field name, e.g. "temperature" or "include.num_beams".
	// example: temperature
	Field string `json:"field" example:"temperature"`
	// New value for the field.
	// example: 0.7
	Value any `json:"value"`
}

// StateResponse wraps the session state for GET /state.
type StateResponse struct {
	// Current session state.
	// example: ready
	State SessionState `json:"state" example:"ready"`
}

// StatusResponse is the detailed session status for GET /status.
type StatusResponse struct {
	// Current session state.
	// example: ready
	State SessionState `json:"state" example:"ready"`
	// ID of the loaded model artifact, empty until load completes.
	// example: tinyllama-1.1b-chat-q4_k_m.gguf
	Model string `json:"model,omitempty" example:"tinyllama-1.1b-chat-q4_k_m.gguf"`
	// Number of turns in the conversation buffer.
	// example: 4
	Turns int `json:"turns" example:"4"`
	// Last load or generation error, empty when none.
	Error string `json:"error,omitempty"`
	// Active generation parameters.
	Params ParameterSet `json:"params"`
	// Seconds since the session was created.
	// example: 120
	UptimeSec int64 `json:"uptime_sec" example:"120"`
}

// ConversationResponse wraps the turn history for GET /conversation.
type ConversationResponse struct {
	Turns []Turn `json:"turns"`
}

// ModelsResponse wraps the cached artifact list for GET /models.
type ModelsResponse struct {
	Models []Artifact `json:"models"`
	// Total cache size in MB.
	// example: 1280
	TotalMB int `json:"total_mb" example:"1280"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: session is busy generating
	Error string `json:"error" example:"session is busy generating"`
	// HTTP status code.
	// example: 409
	Code int `json:"code" example:"409"`
}
