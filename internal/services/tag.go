package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/store"
)

// TagService coordinates tag CRUD. Tag names are unique; Create pre-checks
// the name before touching either side so callers get ErrConflict instead
// of a driver error.
type TagService struct {
	store store.Store
	gw    remote.Gateway
	log   zerolog.Logger
}

func NewTagService(s store.Store, gw remote.Gateway, log zerolog.Logger) *TagService {
	return &TagService{store: s, gw: gw, log: log}
}

func (s *TagService) List(ctx context.Context) ([]*model.Tag, error) {
	if s.gw == nil {
		return s.store.Tags().List(ctx)
	}
	tags, err := s.gw.ListTags(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("remote tag list failed, serving local store")
		return s.store.Tags().List(ctx)
	}
	for _, t := range tags {
		if _, uerr := s.store.Tags().Upsert(ctx, t); uerr != nil {
			s.log.Error().Err(uerr).Str("tagId", t.ID).Msg("adopt remote tag")
		}
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id string) (*model.Tag, error) {
	return s.store.Tags().Get(ctx, id)
}

func (s *TagService) Create(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	_, err := s.store.Tags().GetByName(ctx, t.Name)
	if err == nil {
		return nil, pkgerrors.Wrapf(model.ErrConflict, "tag name %q already in use", t.Name)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	created, err := s.store.Tags().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	if s.gw != nil {
		if _, rerr := s.gw.CreateTag(ctx, created); rerr != nil {
			s.log.Warn().Err(rerr).Str("tagId", created.ID).Msg("remote tag create failed, kept local")
		}
	}
	return created, nil
}

func (s *TagService) Update(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.store.Tags().Update(ctx, t)
	if err != nil {
		return nil, err
	}
	if s.gw != nil {
		if _, rerr := s.gw.UpdateTag(ctx, updated); rerr != nil {
			s.log.Warn().Err(rerr).Str("tagId", updated.ID).Msg("remote tag update failed, kept local")
		}
	}
	return updated, nil
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	if err := s.store.Tags().Delete(ctx, id); err != nil {
		return err
	}
	if s.gw != nil {
		if err := s.gw.DeleteTag(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
			s.log.Warn().Err(err).Str("tagId", id).Msg("remote tag delete failed")
		}
	}
	return nil
}
