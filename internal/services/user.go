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

// UserService coordinates the single current-user record.
type UserService struct {
	store store.Store
	gw    remote.Gateway
	log   zerolog.Logger
}

func NewUserService(s store.Store, gw remote.Gateway, log zerolog.Logger) *UserService {
	return &UserService{store: s, gw: gw, log: log}
}

// Current reads the local record first and falls back to the remote when no
// user has been stored yet. A remote hit is cached locally.
func (s *UserService) Current(ctx context.Context) (*model.User, error) {
	u, err := s.store.Users().Current(ctx)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrNotFound) || s.gw == nil {
		return nil, err
	}
	ru, rerr := s.gw.CurrentUser(ctx)
	if rerr != nil {
		if errors.Is(rerr, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		s.log.Warn().Err(rerr).Msg("remote current user failed")
		return nil, model.ErrNotFound
	}
	if _, serr := s.store.Users().Save(ctx, ru); serr != nil {
		s.log.Error().Err(serr).Str("userId", ru.ID).Msg("cache remote user")
	}
	return ru, nil
}

// Save stores locally then propagates. Remote failures are absorbed.
func (s *UserService) Save(ctx context.Context, u *model.User) (*model.User, error) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if err := u.Validate(); err != nil {
		return nil, err
	}
	saved, err := s.store.Users().Save(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.gw != nil {
		if _, rerr := s.gw.SaveUser(ctx, saved); rerr != nil {
			s.log.Warn().Err(rerr).Str("userId", saved.ID).Msg("remote user save failed, kept local")
		}
	}
	return saved, nil
}

// SignOut clears the local user record. Remote session state is untouched.
func (s *UserService) SignOut(ctx context.Context) error {
	return s.store.Users().Delete(ctx)
}
