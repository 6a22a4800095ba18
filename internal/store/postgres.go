package store

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/nvallee/cityforge/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// queryTimeout bounds every store round-trip so a stuck database cannot stall
// the game loop indefinitely.
const queryTimeout = 5 * time.Second

// Postgres is a KV implementation backed by a single kv_store table. The KV
// interface is synchronous, so failures are logged and degrade to "absent"
// rather than being surfaced; the progression core treats missing state as a
// reset to defaults.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database, runs the embedded migration, and
// returns the store.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func migrate(pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return goose.Up(db, "migrations")
}

func (p *Postgres) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var value string
	err := p.pool.QueryRow(ctx, "SELECT value FROM kv_store WHERE key = $1", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (p *Postgres) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to persist key", "key", key, "error", err)
	}
}

func (p *Postgres) Has(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM kv_store WHERE key = $1)", key).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}

func (p *Postgres) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if _, err := p.pool.Exec(ctx, "DELETE FROM kv_store WHERE key = $1", key); err != nil {
		logger.FromContext(ctx).Error("Failed to delete key", "key", key, "error", err)
	}
}

// Flush is a no-op: every Set is written through synchronously.
func (p *Postgres) Flush() {}

// Ping verifies connectivity, for readiness checks.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
