package api

// SSE frame payloads for /chat/stream. Every frame is emitted as
// "data: <json>\n\n"; clients dispatch on the fields present.

// StreamStart opens the stream and names the provider that won dispatch.
type StreamStart struct {
	Status   string `json:"status"` // always "start"
	Provider string `json:"provider"`
}

// StreamChunk carries one token chunk as it arrives from the provider.
type StreamChunk struct {
	Chunk    string `json:"chunk"`
	Provider string `json:"provider"`
}

// StreamError reports a mid-stream or open failure. The stream never ends
// on a bare error frame; a text and done frame always follow an open
// failure.
type StreamError struct {
	Error string `json:"error"`
}

// StreamText carries substitute fallback text after an open failure.
type StreamText struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// StreamDone closes the stream with the accumulated text.
type StreamDone struct {
	Status   string  `json:"status"` // always "done"
	FullText string  `json:"full_text"`
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Elapsed  float64 `json:"elapsed"`
}
