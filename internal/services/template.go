package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/store"
)

// TemplateService coordinates template CRUD and card instantiation.
type TemplateService struct {
	store store.Store
	cards *CardService
	gw    remote.Gateway
	log   zerolog.Logger
}

func NewTemplateService(s store.Store, cards *CardService, gw remote.Gateway, log zerolog.Logger) *TemplateService {
	return &TemplateService{store: s, cards: cards, gw: gw, log: log}
}

func (s *TemplateService) List(ctx context.Context) ([]*model.Template, error) {
	if s.gw == nil {
		return s.store.Templates().List(ctx)
	}
	templates, err := s.gw.ListTemplates(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("remote template list failed, serving local store")
		return s.store.Templates().List(ctx)
	}
	for _, t := range templates {
		if _, uerr := s.store.Templates().Upsert(ctx, t); uerr != nil {
			s.log.Error().Err(uerr).Str("templateId", t.ID).Msg("adopt remote template")
		}
	}
	return templates, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	return s.store.Templates().Get(ctx, id)
}

func (s *TemplateService) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return nil, err
	}
	created, err := s.store.Templates().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	if s.gw != nil {
		if _, rerr := s.gw.CreateTemplate(ctx, created); rerr != nil {
			s.log.Warn().Err(rerr).Str("templateId", created.ID).Msg("remote template create failed, kept local")
		}
	}
	return created, nil
}

func (s *TemplateService) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	t.UpdatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.store.Templates().Update(ctx, t)
	if err != nil {
		return nil, err
	}
	if s.gw != nil {
		if _, rerr := s.gw.UpdateTemplate(ctx, updated); rerr != nil {
			s.log.Warn().Err(rerr).Str("templateId", updated.ID).Msg("remote template update failed, kept local")
		}
	}
	return updated, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.store.Templates().Delete(ctx, id); err != nil {
		return err
	}
	if s.gw != nil {
		if err := s.gw.DeleteTemplate(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
			s.log.Warn().Err(err).Str("templateId", id).Msg("remote template delete failed")
		}
	}
	return nil
}

// Instantiate creates a new card seeded from the template's defaults and
// bumps the template's usage count. Title overrides are optional.
func (s *TemplateService) Instantiate(ctx context.Context, id string, title *string) (*model.Card, error) {
	tpl, err := s.store.Templates().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	card := &model.Card{
		Type:  tpl.CardType,
		Title: title,
	}
	if tpl.DefaultContent != nil {
		card.Content = *tpl.DefaultContent
	}
	if tpl.DefaultMetadata != nil {
		meta := *tpl.DefaultMetadata
		card.Metadata = &meta
	}
	if len(tpl.DefaultTags) > 0 {
		card.Tags = append([]string(nil), tpl.DefaultTags...)
	}
	created, err := s.cards.Create(ctx, card)
	if err != nil {
		return nil, err
	}
	if err := s.store.Templates().IncrementUsage(ctx, id); err != nil {
		s.log.Error().Err(err).Str("templateId", id).Msg("bump template usage")
	}
	return created, nil
}
