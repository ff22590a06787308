package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"loginweb/internal/repository"
	"loginweb/internal/store"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestPresenceService(t *testing.T) (*PresenceService, *fakeClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "online.json")
	repo := repository.NewFilePresenceRepository(store.NewLenientTable[int64](path))
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	svc := NewPresenceServiceWithClock(zap.NewNop(), repo, 300*time.Second, clock.Now)
	return svc, clock
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestPresenceMarkOnlineListActive(t *testing.T) {
	svc, _ := newTestPresenceService(t)
	ctx := context.Background()

	if err := svc.MarkOnline(ctx, "alice"); err != nil {
		t.Fatalf("mark online: %v", err)
	}
	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if !contains(active, "alice") {
		t.Fatalf("expected alice online, got %v", active)
	}
}

func TestPresenceExpiryBoundary(t *testing.T) {
	svc, clock := newTestPresenceService(t)
	ctx := context.Background()

	if err := svc.MarkOnline(ctx, "alice"); err != nil {
		t.Fatalf("mark online: %v", err)
	}

	// Exactamente 300s sin actividad sigue contando como activo.
	clock.Advance(300 * time.Second)
	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if !contains(active, "alice") {
		t.Fatalf("expected alice still online at exactly 300s, got %v", active)
	}

	clock.Advance(1 * time.Second)
	active, err = svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if contains(active, "alice") {
		t.Fatalf("expected alice expired at 301s, got %v", active)
	}
}

func TestPresenceMarkOnlineRefreshesTimestamp(t *testing.T) {
	svc, clock := newTestPresenceService(t)
	ctx := context.Background()

	if err := svc.MarkOnline(ctx, "alice"); err != nil {
		t.Fatalf("mark online: %v", err)
	}
	clock.Advance(200 * time.Second)
	if err := svc.MarkOnline(ctx, "alice"); err != nil {
		t.Fatalf("mark online again: %v", err)
	}
	clock.Advance(200 * time.Second)

	// 400s desde la primera marca, 200s desde la segunda.
	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if !contains(active, "alice") {
		t.Fatalf("expected refreshed entry to survive, got %v", active)
	}
}

func TestPresenceMarkOffline(t *testing.T) {
	svc, _ := newTestPresenceService(t)
	ctx := context.Background()

	if err := svc.MarkOnline(ctx, "alice"); err != nil {
		t.Fatalf("mark online: %v", err)
	}
	if err := svc.MarkOffline(ctx, "alice"); err != nil {
		t.Fatalf("mark offline: %v", err)
	}
	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if contains(active, "alice") {
		t.Fatalf("expected alice removed immediately, got %v", active)
	}

	// Marcar offline a alguien ausente es un no-op.
	if err := svc.MarkOffline(ctx, "ghost"); err != nil {
		t.Fatalf("mark offline absent: %v", err)
	}
}

func TestPresenceListActiveIsSorted(t *testing.T) {
	svc, _ := newTestPresenceService(t)
	ctx := context.Background()

	for _, u := range []string{"carol", "alice", "bob"} {
		if err := svc.MarkOnline(ctx, u); err != nil {
			t.Fatalf("mark online %s: %v", u, err)
		}
	}
	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 3 || active[0] != "alice" || active[1] != "bob" || active[2] != "carol" {
		t.Fatalf("expected sorted list, got %v", active)
	}
}

func TestPresenceSweepRunsWithoutEntries(t *testing.T) {
	svc, _ := newTestPresenceService(t)
	if err := svc.SweepExpired(context.Background()); err != nil {
		t.Fatalf("sweep on empty store: %v", err)
	}
}
