package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

func TestPostgresStore_Append_Recent(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// Unique ID per run to avoid primary key collisions with previous runs.
	id := fmt.Sprintf("test-%d", time.Now().UTC().UnixNano())
	ev := &domain.Event{
		ID:         id,
		EndpointID: "example.com",
		Target:     "https://example.com",
		Kind:       domain.EventAlertSent,
		AlertKind:  domain.AlertDown,
		DownForMS:  300_000,
		Message:    "CRITICAL: Server Down Alert - https://example.com",
		At:         time.Now().UTC().Add(time.Hour), // newest row
	}
	if err := store.Append(ctx, ev); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) == 0 || got[0].ID != id {
		t.Fatalf("expected our event first, got %+v", got)
	}
	if got[0].AlertKind != domain.AlertDown || got[0].DownForMS != 300_000 {
		t.Fatalf("unexpected row: %+v", got[0])
	}
}
