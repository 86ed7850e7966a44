package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS provd_cli_audit (
		id          UUID PRIMARY KEY,
		time        TIMESTAMPTZ NOT NULL,
		action      TEXT NOT NULL,
		target      TEXT NOT NULL DEFAULT '',
		outcome     TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL
	)
`

const insertEvent = `
	INSERT INTO provd_cli_audit (id, time, action, target, outcome, error, duration_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// execer — часть *pgxpool.Pool, нужная PGSink.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSink пишет события в таблицу provd_cli_audit.
type PGSink struct {
	db   execer
	pool *pgxpool.Pool
}

// NewPGSink подключается к PostgreSQL и создаёт таблицу, если её нет.
func NewPGSink(ctx context.Context, dsn string) (*PGSink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	sink := &PGSink{db: pool, pool: pool}
	if err := sink.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

func (s *PGSink) ensureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Write реализует Sink.
func (s *PGSink) Write(ctx context.Context, ev Event) error {
	_, err := s.db.Exec(ctx, insertEvent,
		ev.ID,
		ev.Time,
		ev.Action,
		ev.Target,
		string(ev.Outcome),
		ev.Error,
		ev.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *PGSink) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
