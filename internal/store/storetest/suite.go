// Package storetest holds a driver-agnostic compliance suite. Both the
// sqlite and postgres adapters run it.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/store"
)

func strPtr(s string) *string { return &s }

// SampleCard builds a full aggregate: tags, metadata, and checklist items.
func SampleCard() *model.Card {
	now := time.Now().UTC().Truncate(time.Millisecond)
	reviewed := now.Add(-24 * time.Hour)
	return &model.Card{
		ID:             uuid.NewString(),
		Type:           model.CardTypeChecklist,
		Title:          strPtr("weekly review"),
		Content:        "go through the inbox",
		Author:         strPtr("me"),
		Tags:           []string{"gtd", "weekly"},
		IsFavorite:     true,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastReviewedAt: &reviewed,
		Metadata: &model.CardMetadata{
			IdeaStatus: strPtr("active"),
			ChecklistItems: []model.ChecklistItem{
				{ID: uuid.NewString(), Text: "clear inbox", IsCompleted: true, Order: 0},
				{ID: uuid.NewString(), Text: "plan week", Order: 1},
			},
		},
	}
}

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must provide a clean, isolated store per call.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Card aggregate round trip
	card := SampleCard()
	if _, err := s.Cards().Create(ctx, card); err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	got, err := s.Cards().Get(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if got.Content != card.Content || got.Title == nil || *got.Title != *card.Title {
		t.Fatalf("GetCard: scalar mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "gtd" || got.Tags[1] != "weekly" {
		t.Fatalf("GetCard: tags mismatch: %v", got.Tags)
	}
	if got.Metadata == nil || len(got.Metadata.ChecklistItems) != 2 {
		t.Fatalf("GetCard: metadata mismatch: %+v", got.Metadata)
	}
	if got.Metadata.ChecklistItems[0].Text != "clear inbox" || got.Metadata.ChecklistItems[1].Order != 1 {
		t.Fatalf("GetCard: checklist order mismatch: %+v", got.Metadata.ChecklistItems)
	}

	// Duplicate id is a conflict
	if _, err := s.Cards().Create(ctx, card); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateCard duplicate: want ErrConflict, got %v", err)
	}

	// Update replaces the whole aggregate
	card.Tags = []string{"weekly", "focus"}
	card.Content = "revised"
	card.Metadata = nil
	if _, err := s.Cards().Update(ctx, card); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	got, err = s.Cards().Get(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCard after update: %v", err)
	}
	if got.Content != "revised" || got.Metadata != nil {
		t.Fatalf("UpdateCard: aggregate not replaced: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "focus" || got.Tags[1] != "weekly" {
		t.Fatalf("UpdateCard: tags not replaced: %v", got.Tags)
	}

	// Update of a missing card
	missing := SampleCard()
	if _, err := s.Cards().Update(ctx, missing); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateCard missing: want ErrNotFound, got %v", err)
	}

	// Upsert inserts then replaces
	up := SampleCard()
	if _, err := s.Cards().Upsert(ctx, up); err != nil {
		t.Fatalf("UpsertCard insert: %v", err)
	}
	up.Content = "upserted"
	if _, err := s.Cards().Upsert(ctx, up); err != nil {
		t.Fatalf("UpsertCard replace: %v", err)
	}
	if got, err := s.Cards().Get(ctx, up.ID); err != nil || got.Content != "upserted" {
		t.Fatalf("UpsertCard: got=%+v err=%v", got, err)
	}

	// List
	if lst, err := s.Cards().List(ctx); err != nil || len(lst) != 2 {
		t.Fatalf("ListCards: n=%d err=%v", len(lst), err)
	}

	// Delete is idempotent
	if err := s.Cards().Delete(ctx, up.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	if err := s.Cards().Delete(ctx, up.ID); err != nil {
		t.Fatalf("DeleteCard repeat: %v", err)
	}
	if _, err := s.Cards().Get(ctx, up.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetCard after delete: want ErrNotFound, got %v", err)
	}

	// Tags entity
	tag := &model.Tag{ID: uuid.NewString(), Name: "reading", Color: strPtr("#00f"), CreatedAt: time.Now().UTC()}
	if _, err := s.Tags().Create(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	dup := &model.Tag{ID: uuid.NewString(), Name: "reading", CreatedAt: time.Now().UTC()}
	if _, err := s.Tags().Create(ctx, dup); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateTag duplicate name: want ErrConflict, got %v", err)
	}
	if got, err := s.Tags().GetByName(ctx, "reading"); err != nil || got.ID != tag.ID {
		t.Fatalf("GetTagByName: got=%+v err=%v", got, err)
	}
	if _, err := s.Tags().GetByName(ctx, "absent"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetTagByName absent: want ErrNotFound, got %v", err)
	}

	// Templates
	tpl := &model.Template{
		ID:             uuid.NewString(),
		Name:           "book note",
		CardType:       model.CardTypeArticle,
		DefaultContent: strPtr("## Summary"),
		DefaultTags:    []string{"book"},
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if _, err := s.Templates().Create(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if err := s.Templates().IncrementUsage(ctx, tpl.ID); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}
	if err := s.Templates().IncrementUsage(ctx, tpl.ID); err != nil {
		t.Fatalf("IncrementUsage second: %v", err)
	}
	if got, err := s.Templates().Get(ctx, tpl.ID); err != nil || got.UsageCount != 2 {
		t.Fatalf("Template usage count: got=%+v err=%v", got, err)
	}
	if err := s.Templates().IncrementUsage(ctx, uuid.NewString()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("IncrementUsage missing: want ErrNotFound, got %v", err)
	}

	// Users: at most one current user
	u1 := &model.User{ID: uuid.NewString(), Username: "ada", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if _, err := s.Users().Save(ctx, u1); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	u2 := &model.User{ID: uuid.NewString(), Username: "grace", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC().Add(time.Second)}
	if _, err := s.Users().Save(ctx, u2); err != nil {
		t.Fatalf("SaveUser replace: %v", err)
	}
	if got, err := s.Users().Current(ctx); err != nil || got.Username != "grace" {
		t.Fatalf("CurrentUser: got=%+v err=%v", got, err)
	}
	if err := s.Users().Delete(ctx); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.Users().Current(ctx); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("CurrentUser after delete: want ErrNotFound, got %v", err)
	}

	// Sync state
	if at, err := s.SyncState().LastSyncAt(ctx); err != nil || at != nil {
		t.Fatalf("LastSyncAt unset: at=%v err=%v", at, err)
	}
	stamp := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.SyncState().SetLastSyncAt(ctx, stamp); err != nil {
		t.Fatalf("SetLastSyncAt: %v", err)
	}
	if at, err := s.SyncState().LastSyncAt(ctx); err != nil || at == nil || !at.Equal(stamp) {
		t.Fatalf("LastSyncAt: at=%v err=%v", at, err)
	}
}
