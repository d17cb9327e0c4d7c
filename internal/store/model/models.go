package model

import "time"

// DispatchLog is one completed dispatch, recorded after the envelope is
// returned to the caller. Observability only; nothing reads it back on
// the request path.
type DispatchLog struct {
	ID        string    `db:"id"`
	Endpoint  string    `db:"endpoint"` // chat, direct, stream, probe
	Provider  string    `db:"provider"`
	Model     string    `db:"model"`
	Success   bool      `db:"success"`
	Fallback  bool      `db:"fallback"` // soft failure after exhaustion
	Attempts  int       `db:"attempts"`
	LatencyMS int64     `db:"latency_ms"`
	CreatedAt time.Time `db:"created_at"`
}
