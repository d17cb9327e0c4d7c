package api

// ChatRequest is the body of POST /chat. Provider is optional; when empty
// the dispatcher starts from the configured default.
type ChatRequest struct {
	Message  string `json:"message" binding:"required"`
	Provider string `json:"provider,omitempty"`
}

// DirectRequest is the body of POST /chat/direct. It names exactly one
// provider and bypasses failover entirely.
type DirectRequest struct {
	Message  string `json:"message" binding:"required"`
	Provider string `json:"provider" binding:"required"`

	// Model overrides the provider default when set.
	Model string `json:"model,omitempty"`

	// Timeout in seconds. Zero means the dispatcher default.
	Timeout float64 `json:"timeout,omitempty"`
}

// StreamRequest is the body of POST /chat/stream.
type StreamRequest struct {
	Message  string `json:"message" binding:"required"`
	Provider string `json:"provider,omitempty"`

	// Timeout in milliseconds, matching the legacy clients. Values outside
	// (0, 60000] fall back to the 20s default.
	Timeout int64 `json:"timeout,omitempty"`
}
