package store

import (
	"context"
	"time"

	"github.com/cardkeep/cardkeep/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
//
// Card aggregates span a root table, a tag-association table, a 1:1
// metadata table and an ordered checklist-item table. Implementations must
// write each aggregate inside a single transaction: a failure at any step
// leaves no partial rows visible to readers, and deleting the root row
// cascades to all owned rows.
type Store interface {
	Cards() Cards
	Tags() Tags
	Templates() Templates
	Users() Users
	SyncState() SyncState
}

type Cards interface {
	// Create inserts the full aggregate; an existing id is a conflict.
	Create(ctx context.Context, c *model.Card) (*model.Card, error)
	// Get reassembles the full aggregate; absent ids yield ErrNotFound.
	Get(ctx context.Context, id string) (*model.Card, error)
	List(ctx context.Context) ([]*model.Card, error)
	// Update replaces the whole aggregate: scalar fields overwritten, tag
	// associations and metadata/checklist rows deleted and reinserted.
	Update(ctx context.Context, c *model.Card) (*model.Card, error)
	// Upsert inserts the aggregate or replaces it when present. Used by
	// the sync path to adopt remote truth.
	Upsert(ctx context.Context, c *model.Card) (*model.Card, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type Tags interface {
	Create(ctx context.Context, t *model.Tag) (*model.Tag, error)
	Get(ctx context.Context, id string) (*model.Tag, error)
	// GetByName yields ErrNotFound when no tag carries the name; callers
	// use it as the uniqueness pre-check.
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	List(ctx context.Context) ([]*model.Tag, error)
	Update(ctx context.Context, t *model.Tag) (*model.Tag, error)
	Upsert(ctx context.Context, t *model.Tag) (*model.Tag, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type Templates interface {
	Create(ctx context.Context, t *model.Template) (*model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
	List(ctx context.Context) ([]*model.Template, error)
	Update(ctx context.Context, t *model.Template) (*model.Template, error)
	Upsert(ctx context.Context, t *model.Template) (*model.Template, error)
	// IncrementUsage bumps UsageCount after a card is instantiated.
	IncrementUsage(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type Users interface {
	// Save upserts the current user; at most one row exists locally.
	Save(ctx context.Context, u *model.User) (*model.User, error)
	// Current returns the current user, or ErrNotFound when none is set.
	Current(ctx context.Context) (*model.User, error)
	Delete(ctx context.Context) error
}

// SyncState records coordinator bookkeeping, currently the timestamp of the
// last successful full sync.
type SyncState interface {
	LastSyncAt(ctx context.Context) (*time.Time, error)
	SetLastSyncAt(ctx context.Context, at time.Time) error
}
