package api

// ChatResponse is the uniform envelope returned by the chat endpoints.
//
// Success is true for every well-formed request: when all real providers
// fail, the dispatcher substitutes canned text and marks the provider with
// a "_fallback" suffix instead of surfacing an error.
type ChatResponse struct {
	Success  bool    `json:"success"`
	Response string  `json:"response"`
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Elapsed  float64 `json:"elapsed"` // seconds
	Error    string  `json:"error,omitempty"`
}

// ErrorEnvelope is the direct-call failure shape. Chat endpoints with
// failover never return it; /chat/direct does.
type ErrorEnvelope struct {
	Error    string `json:"error"`
	Response string `json:"response"`
	Provider string `json:"provider"`
}

// ProbeResponse reports the outcome of a one-shot provider probe.
type ProbeResponse struct {
	Status         string `json:"status"` // "ok" or "error"
	Message        string `json:"message"`
	Response       string `json:"response,omitempty"`
	Error          string `json:"error,omitempty"`
	RequiresAPIKey bool   `json:"requires_api_key"`
}

// HealthResponse is the static /health payload.
type HealthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Port      string  `json:"port"`
	Providers int     `json:"providers"`
	Timestamp float64 `json:"timestamp"`
}
