package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/booomerangs/relay-api/internal/store"
	"github.com/booomerangs/relay-api/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB
	executor DB
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Dispatches() store.DispatchRepository {
	return &dispatchRepo{db: r.executor}
}

type dispatchRepo struct {
	db DB
}

func (r *dispatchRepo) Log(ctx context.Context, log *model.DispatchLog) error {
	query := `
	INSERT INTO dispatch_logs (
		id, endpoint, provider, model, success, fallback, attempts,
		latency_ms, created_at
	) VALUES (
		:id, :endpoint, :provider, :model, :success, :fallback, :attempts,
		:latency_ms, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

func (r *dispatchRepo) CountSince(ctx context.Context, provider string, sinceHours int) (int, error) {
	var count int
	query := `
	SELECT COUNT(*) FROM dispatch_logs
	WHERE provider = ? AND created_at >= datetime('now', ?)`
	modifier := fmt.Sprintf("-%d hours", sinceHours)
	err := r.db.GetContext(ctx, &count, query, provider, modifier)
	return count, err
}
