// Package live exposes store collections as live snapshot streams: each
// emission is the complete current materialization of a query, re-run after
// every commit that could affect it.
package live

import (
	"context"
	"errors"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/store"
)

// Feed binds a query function to a set of event families. Subscribers are
// independent; each gets its own snapshot sequence. The feed may over-notify
// (re-emit on any write to a watched family) rather than diff.
type Feed[T any] struct {
	bus      *events.Bus
	families map[events.Family]bool
	query    func(context.Context) (T, error)
}

func NewFeed[T any](bus *events.Bus, query func(context.Context) (T, error), families ...events.Family) *Feed[T] {
	set := make(map[events.Family]bool, len(families))
	for _, f := range families {
		set[f] = true
	}
	return &Feed[T]{bus: bus, families: set, query: query}
}

// Subscribe starts a snapshot stream bound to ctx: the current snapshot is
// emitted first, then a fresh one after each matching commit. The channel
// closes when ctx is done. A query error skips that emission; the stream
// stays open.
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan T {
	out := make(chan T, 1)
	evts, cancel := f.bus.Subscribe()
	go func() {
		defer close(out)
		defer cancel()
		f.emit(ctx, out)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-evts:
				if !ok {
					return
				}
				if !f.families[evt.Family] {
					continue
				}
				f.emit(ctx, out)
			}
		}
	}()
	return out
}

func (f *Feed[T]) emit(ctx context.Context, out chan<- T) {
	snap, err := f.query(ctx)
	if err != nil {
		return
	}
	select {
	case out <- snap:
	case <-ctx.Done():
	}
}

// NewCardFeed streams the full card collection.
func NewCardFeed(bus *events.Bus, st store.Store) *Feed[[]*model.Card] {
	return NewFeed(bus, func(ctx context.Context) ([]*model.Card, error) {
		return st.Cards().List(ctx)
	}, events.FamilyCards)
}

// NewTagFeed streams all named tags.
func NewTagFeed(bus *events.Bus, st store.Store) *Feed[[]*model.Tag] {
	return NewFeed(bus, func(ctx context.Context) ([]*model.Tag, error) {
		return st.Tags().List(ctx)
	}, events.FamilyTags)
}

// NewTemplateFeed streams all templates.
func NewTemplateFeed(bus *events.Bus, st store.Store) *Feed[[]*model.Template] {
	return NewFeed(bus, func(ctx context.Context) ([]*model.Template, error) {
		return st.Templates().List(ctx)
	}, events.FamilyTemplates)
}

// NewCurrentUserFeed streams the current user; the emission is nil while no
// user is stored.
func NewCurrentUserFeed(bus *events.Bus, st store.Store) *Feed[*model.User] {
	return NewFeed(bus, func(ctx context.Context) (*model.User, error) {
		u, err := st.Users().Current(ctx)
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return u, err
	}, events.FamilyUsers)
}
