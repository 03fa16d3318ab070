package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/query"
	"github.com/cardkeep/cardkeep/internal/store"
)

// StatsService recomputes collection statistics from local rows on every
// call. The snapshot is derived state and never persisted.
type StatsService struct {
	store store.Store
	log   zerolog.Logger
}

func NewStatsService(s store.Store, log zerolog.Logger) *StatsService {
	return &StatsService{store: s, log: log}
}

func (s *StatsService) Compute(ctx context.Context) (*model.Statistics, error) {
	cards, err := s.store.Cards().List(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := s.store.SyncState().LastSyncAt(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("read last sync timestamp")
		lastSync = nil
	}
	return query.Statistics(cards, time.Now().UTC(), lastSync), nil
}
