// Package sqlite stores the event journal in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/repo"
)

var _ repo.EventStore = (*Store)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS monitor_events(
  id TEXT PRIMARY KEY,
  endpoint_id TEXT NOT NULL,
  target TEXT NOT NULL,
  kind TEXT NOT NULL,
  alert_kind TEXT NOT NULL DEFAULT '',
  down_for_ms INTEGER NOT NULL DEFAULT 0,
  message TEXT NOT NULL DEFAULT '',
  ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_monitor_events_ts ON monitor_events(ts);`

type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) at path.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	log.Info("journal_ready", zap.String("driver", "sqlite"), zap.String("path", path))
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Append(ctx context.Context, ev *domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monitor_events(id, endpoint_id, target, kind, alert_kind, down_for_ms, message, ts) VALUES(?,?,?,?,?,?,?,?)`,
		ev.ID, string(ev.EndpointID), ev.Target, string(ev.Kind), string(ev.AlertKind),
		ev.DownForMS, ev.Message, ev.At.UnixNano(),
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, endpoint_id, target, kind, alert_kind, down_for_ms, message, ts
		   FROM monitor_events ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			ev                   domain.Event
			endpointID, kind, ak string
			ts                   int64
		)
		if err := rows.Scan(&ev.ID, &endpointID, &ev.Target, &kind, &ak, &ev.DownForMS, &ev.Message, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.EndpointID = domain.EndpointID(endpointID)
		ev.Kind = domain.EventKind(kind)
		ev.AlertKind = domain.AlertKind(ak)
		ev.At = time.Unix(0, ts).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
