package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/repo"
)

var _ repo.EventStore = (*Store)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS monitor_events (
  id           TEXT PRIMARY KEY,
  endpoint_id  TEXT NOT NULL,
  target       TEXT NOT NULL,
  kind         TEXT NOT NULL,
  alert_kind   TEXT NOT NULL DEFAULT '',
  down_for_ms  BIGINT NOT NULL DEFAULT 0,
  message      TEXT NOT NULL DEFAULT '',
  at           TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_monitor_events_at ON monitor_events (at DESC);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// New connects, pings and applies the schema.
func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctxPing, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("journal_ready", zap.String("driver", "postgres"))
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Append(ctx context.Context, ev *domain.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitor_events
		   (id, endpoint_id, target, kind, alert_kind, down_for_ms, message, at)
		 VALUES
		   ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, string(ev.EndpointID), ev.Target, string(ev.Kind), string(ev.AlertKind),
		ev.DownForMS, ev.Message, ev.At,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = repo.DefaultRecent
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, endpoint_id, target, kind, alert_kind, down_for_ms, message, at
		   FROM monitor_events
		  ORDER BY at DESC, id DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			ev                   domain.Event
			endpointID, kind, ak string
		)
		if err := rows.Scan(&ev.ID, &endpointID, &ev.Target, &kind, &ak, &ev.DownForMS, &ev.Message, &ev.At); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.EndpointID = domain.EndpointID(endpointID)
		ev.Kind = domain.EventKind(kind)
		ev.AlertKind = domain.AlertKind(ak)
		out = append(out, ev)
	}
	return out, rows.Err()
}
