package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/store"
)

// ErrNoGateway is returned when a sync is requested but the process has no
// remote side configured.
var ErrNoGateway = errors.New("no remote gateway configured")

// SyncService performs an explicit full pull: remote state replaces local
// state for every entity family, then the sync timestamp is recorded.
// Unlike the per-operation coordination paths, a remote failure here is an
// error; the caller asked for a sync and should know it did not happen.
type SyncService struct {
	store store.Store
	gw    remote.Gateway
	log   zerolog.Logger
}

func NewSyncService(s store.Store, gw remote.Gateway, log zerolog.Logger) *SyncService {
	return &SyncService{store: s, gw: gw, log: log}
}

// Result summarizes one completed sync.
type Result struct {
	Cards     int
	Tags      int
	Templates int
	SyncedAt  time.Time
}

func (s *SyncService) Sync(ctx context.Context) (*Result, error) {
	if s.gw == nil {
		return nil, ErrNoGateway
	}
	cards, err := s.gw.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.gw.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.gw.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	// Each family adopts the snapshot upsert-first, prune-after. A failure
	// mid-sync then leaves existing rows in place instead of an emptied
	// family waiting for the next successful sync.
	if err := s.replaceCards(ctx, cards); err != nil {
		return nil, err
	}
	if err := s.replaceTags(ctx, tags); err != nil {
		return nil, err
	}
	if err := s.replaceTemplates(ctx, templates); err != nil {
		return nil, err
	}

	// User is best effort; an account-less remote is not a failed sync.
	if u, uerr := s.gw.CurrentUser(ctx); uerr == nil {
		if _, serr := s.store.Users().Save(ctx, u); serr != nil {
			s.log.Error().Err(serr).Msg("store synced user")
		}
	} else if !errors.Is(uerr, model.ErrNotFound) {
		s.log.Warn().Err(uerr).Msg("sync current user")
	}

	at := time.Now().UTC()
	if err := s.store.SyncState().SetLastSyncAt(ctx, at); err != nil {
		return nil, err
	}
	return &Result{Cards: len(cards), Tags: len(tags), Templates: len(templates), SyncedAt: at}, nil
}

func (s *SyncService) replaceCards(ctx context.Context, cards []*model.Card) error {
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, err := s.store.Cards().Upsert(ctx, c); err != nil {
			return err
		}
		seen[c.ID] = struct{}{}
	}
	local, err := s.store.Cards().List(ctx)
	if err != nil {
		return err
	}
	for _, c := range local {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		if err := s.store.Cards().Delete(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) replaceTags(ctx context.Context, tags []*model.Tag) error {
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, err := s.store.Tags().Upsert(ctx, t); err != nil {
			return err
		}
		seen[t.ID] = struct{}{}
	}
	local, err := s.store.Tags().List(ctx)
	if err != nil {
		return err
	}
	for _, t := range local {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		if err := s.store.Tags().Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) replaceTemplates(ctx context.Context, templates []*model.Template) error {
	seen := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		if _, err := s.store.Templates().Upsert(ctx, t); err != nil {
			return err
		}
		seen[t.ID] = struct{}{}
	}
	local, err := s.store.Templates().List(ctx)
	if err != nil {
		return err
	}
	for _, t := range local {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		if err := s.store.Templates().Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}
