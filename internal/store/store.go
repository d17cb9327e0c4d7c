package store

import (
	"context"

	"github.com/booomerangs/relay-api/internal/store/model"
)

// Repository is the persistence boundary for the relay.
type Repository interface {
	Dispatches() DispatchRepository
	Close() error
}

// DispatchRepository persists dispatch logs.
type DispatchRepository interface {
	Log(ctx context.Context, log *model.DispatchLog) error
	CountSince(ctx context.Context, provider string, sinceHours int) (int, error)
}
