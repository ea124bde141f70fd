package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"enterprise-portal/internal/store"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	value := []byte(`[1,2,3]`)
	if err := st.Put(ctx, "k", value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'x'

	got, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[1,2,3]` {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}

	if err := st.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPruneDropsStaleKeysUnderPrefix(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	st := NewStore(WithClock(func() time.Time { return now }))

	for _, key := range []string{"portal_user:old", "portal_menu_items"} {
		if err := st.Put(ctx, key, []byte("v")); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	now = now.Add(2 * time.Hour)
	if err := st.Put(ctx, "portal_user:fresh", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}

	removed, err := st.Prune(ctx, "portal_user:", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 key pruned, got %d", removed)
	}
	if _, err := st.Get(ctx, "portal_user:old"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected stale key gone, got %v", err)
	}
	for _, key := range []string{"portal_user:fresh", "portal_menu_items"} {
		if _, err := st.Get(ctx, key); err != nil {
			t.Fatalf("expected %s kept, got %v", key, err)
		}
	}
}
