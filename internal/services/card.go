// Package services orchestrates use cases over the local store and the
// optional remote gateway. A nil gateway means the process is the
// authoritative side and every operation is purely local.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/query"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/store"
)

// CardService coordinates card reads and writes between the local store and
// the remote gateway. The local store always reflects the last completed
// write; remote failures on the write path are absorbed and logged so the
// caller keeps working offline.
type CardService struct {
	store store.Store
	gw    remote.Gateway
	log   zerolog.Logger
}

func NewCardService(s store.Store, gw remote.Gateway, log zerolog.Logger) *CardService {
	return &CardService{store: s, gw: gw, log: log}
}

// List prefers the remote snapshot and falls back to local rows when the
// gateway is absent or unreachable. A successful remote read is adopted into
// the local store so subsequent offline reads stay current.
func (s *CardService) List(ctx context.Context) ([]*model.Card, error) {
	if s.gw == nil {
		return s.store.Cards().List(ctx)
	}
	cards, err := s.gw.ListCards(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("remote card list failed, serving local store")
		return s.store.Cards().List(ctx)
	}
	s.adoptRemote(ctx, cards)
	return cards, nil
}

// adoptRemote caches a remote snapshot by upserting every returned card.
// Local rows the remote never saw stay put; a read must not destroy a write
// that is still waiting to reach the other side. Only the explicit sync
// replaces the replica wholesale. Failures are logged, not returned; the
// snapshot was already served to the caller.
func (s *CardService) adoptRemote(ctx context.Context, cards []*model.Card) {
	for _, c := range cards {
		if _, err := s.store.Cards().Upsert(ctx, c); err != nil {
			s.log.Error().Err(err).Str("cardId", c.ID).Msg("adopt remote card")
		}
	}
	if err := s.store.SyncState().SetLastSyncAt(ctx, time.Now().UTC()); err != nil {
		s.log.Error().Err(err).Msg("record sync timestamp")
	}
}

// Get reads local-first; a local miss consults the remote and caches the hit.
func (s *CardService) Get(ctx context.Context, id string) (*model.Card, error) {
	c, err := s.store.Cards().Get(ctx, id)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, model.ErrNotFound) || s.gw == nil {
		return nil, err
	}
	rc, rerr := s.gw.GetCard(ctx, id)
	if rerr != nil {
		if errors.Is(rerr, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		s.log.Warn().Err(rerr).Str("cardId", id).Msg("remote card get failed")
		return nil, model.ErrNotFound
	}
	if _, uerr := s.store.Cards().Upsert(ctx, rc); uerr != nil {
		s.log.Error().Err(uerr).Str("cardId", id).Msg("cache remote card")
	}
	return rc, nil
}

// Search filters and sorts the coordinated card set in-process. The set
// comes through List so remote-preferred semantics apply.
func (s *CardService) Search(ctx context.Context, f model.CardFilter, sort model.CardSort) ([]*model.Card, error) {
	cards, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.Sort(query.Filter(cards, f), sort), nil
}

// Create validates and writes locally first, then propagates to the remote.
// When the remote assigns different canonical state the local row is
// replaced with it. A remote failure is absorbed; the local row stands.
func (s *CardService) Create(ctx context.Context, c *model.Card) (*model.Card, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return nil, err
	}
	created, err := s.store.Cards().Create(ctx, c)
	if err != nil {
		return nil, err
	}
	if s.gw == nil {
		return created, nil
	}
	rc, rerr := s.gw.CreateCard(ctx, created)
	if rerr != nil {
		s.log.Warn().Err(rerr).Str("cardId", created.ID).Msg("remote card create failed, kept local")
		return created, nil
	}
	return s.reconcile(ctx, created.ID, rc), nil
}

// reconcile replaces the local row with the remote's canonical version.
// When the remote assigned a new id the stale local row is removed first.
func (s *CardService) reconcile(ctx context.Context, localID string, rc *model.Card) *model.Card {
	if rc.ID != localID {
		if err := s.store.Cards().Delete(ctx, localID); err != nil {
			s.log.Error().Err(err).Str("cardId", localID).Msg("drop superseded local card")
		}
	}
	if _, err := s.store.Cards().Upsert(ctx, rc); err != nil {
		s.log.Error().Err(err).Str("cardId", rc.ID).Msg("adopt canonical card")
	}
	return rc
}

// Update rewrites the aggregate locally, then propagates. Remote failures
// are absorbed.
func (s *CardService) Update(ctx context.Context, c *model.Card) (*model.Card, error) {
	c.UpdatedAt = time.Now().UTC()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.store.Cards().Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if s.gw == nil {
		return updated, nil
	}
	rc, rerr := s.gw.UpdateCard(ctx, updated)
	if rerr != nil {
		s.log.Warn().Err(rerr).Str("cardId", updated.ID).Msg("remote card update failed, kept local")
		return updated, nil
	}
	return s.reconcile(ctx, updated.ID, rc), nil
}

// Delete removes locally and propagates. A remote miss means the card was
// already gone on that side and counts as success.
func (s *CardService) Delete(ctx context.Context, id string) error {
	if err := s.store.Cards().Delete(ctx, id); err != nil {
		return err
	}
	if s.gw == nil {
		return nil
	}
	if err := s.gw.DeleteCard(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
		s.log.Warn().Err(err).Str("cardId", id).Msg("remote card delete failed")
	}
	return nil
}

// ToggleFavorite flips the flag through the update path.
func (s *CardService) ToggleFavorite(ctx context.Context, id string) (*model.Card, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsFavorite = !c.IsFavorite
	return s.Update(ctx, c)
}
