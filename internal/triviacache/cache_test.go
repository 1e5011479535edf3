package triviacache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, ttl time.Duration, now *time.Time) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "trivia.db"), ttl, WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutAndGet(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := openTestStore(t, time.Hour, &now)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "Heat", "gpt-4o-mini"); err != nil || ok {
		t.Fatalf("expected empty cache, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, " Heat ", "gpt-4o-mini", "De Niro and Pacino share one scene."); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	answer, ok, err := store.Get(ctx, "Heat", "gpt-4o-mini")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if answer != "De Niro and Pacino share one scene." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if _, ok, _ := store.Get(ctx, "Heat", "other-model"); ok {
		t.Fatal("entries must be keyed by model")
	}
}

func TestPutReplaces(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := openTestStore(t, 0, &now)
	ctx := context.Background()
	_ = store.Put(ctx, "Heat", "m", "first")
	if err := store.Put(ctx, "Heat", "m", "second"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	answer, _, _ := store.Get(ctx, "Heat", "m")
	if answer != "second" {
		t.Fatalf("expected replacement, got %q", answer)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("expected one row, got %d", n)
	}
}

func TestExpiryAndPurge(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := openTestStore(t, time.Hour, &now)
	ctx := context.Background()
	if err := store.Put(ctx, "Heat", "m", "answer"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, ok, _ := store.Get(ctx, "Heat", "m"); !ok {
		t.Fatal("entry should still be fresh")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "Heat", "m"); ok {
		t.Fatal("entry should have expired")
	}
	removed, err := store.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 purged row, got %d", removed)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trivia.db")
	ctx := context.Background()
	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Put(ctx, "Alien", "m", "answer"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	if _, ok, _ := reopened.Get(ctx, "Alien", "m"); !ok {
		t.Fatal("expected entry to survive reopen")
	}
}

func TestOpenRejectsForeignSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trivia.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 7"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	_ = db.Close()

	if _, err := Open(path, 0); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
