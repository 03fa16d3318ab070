package live

import (
	"context"
	"testing"
	"time"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/store"
	"github.com/cardkeep/cardkeep/internal/store/sqlite"
	"github.com/cardkeep/cardkeep/internal/store/storetest"
)

func newFeedEnv(t *testing.T) (store.Store, *events.Bus) {
	t.Helper()
	db, err := sqlite.OpenMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	bus := events.NewBus()
	return sqlite.New(db, bus), bus
}

func recvCards(t *testing.T, ch <-chan []*model.Card) []*model.Card {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("stream closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}

func TestCardFeed_InitialThenUpdates(t *testing.T) {
	st, bus := newFeedEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewCardFeed(bus, st).Subscribe(ctx)

	if snap := recvCards(t, ch); len(snap) != 0 {
		t.Fatalf("initial snapshot: want empty, got %d", len(snap))
	}

	if _, err := st.Cards().Create(ctx, storetest.SampleCard()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap := recvCards(t, ch); len(snap) != 1 {
		t.Fatalf("post-create snapshot: want 1, got %d", len(snap))
	}
}

func TestCardFeed_IgnoresOtherFamilies(t *testing.T) {
	st, bus := newFeedEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewCardFeed(bus, st).Subscribe(ctx)
	_ = recvCards(t, ch) // drain initial snapshot

	tag := &model.Tag{ID: "t1", Name: "noise", CreatedAt: time.Now().UTC()}
	if _, err := st.Tags().Create(ctx, tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	select {
	case snap := <-ch:
		t.Fatalf("unexpected emission for tag write: %v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCardFeed_ClosesOnContextCancel(t *testing.T) {
	st, bus := newFeedEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := NewCardFeed(bus, st).Subscribe(ctx)
	_ = recvCards(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// a buffered snapshot may still arrive; the next read must close
			if _, ok := <-ch; ok {
				t.Fatalf("stream still open after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not close after cancel")
	}
}

func TestCurrentUserFeed_NilWhileUnset(t *testing.T) {
	st, bus := newFeedEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewCurrentUserFeed(bus, st).Subscribe(ctx)
	select {
	case u := <-ch:
		if u != nil {
			t.Fatalf("want nil user while unset, got %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no initial emission")
	}

	now := time.Now().UTC()
	if _, err := st.Users().Save(ctx, &model.User{ID: "u1", Username: "ada", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	select {
	case u := <-ch:
		if u == nil || u.Username != "ada" {
			t.Fatalf("post-save emission: %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no emission after user save")
	}
}
