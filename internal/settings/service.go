package settings

import (
	"context"
	"fmt"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// RepositoryPort defines data access for studio settings.
type RepositoryPort interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Service handles studio configuration.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *authz.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Get returns the current settings for any role with settings read access.
func (s *Service) Get(ctx context.Context, caller authz.Identity) (Settings, error) {
	pctx := authz.Context{CallerID: caller.ID, CallerRole: caller.Role}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceSettings, pctx); err != nil {
		return Settings{}, err
	}
	return s.repo.Load(ctx)
}

// Update replaces the studio configuration.
func (s *Service) Update(ctx context.Context, caller authz.Identity, next Settings) (Settings, error) {
	pctx := authz.Context{CallerID: caller.ID, CallerRole: caller.Role}
	if err := s.engine.Authorize(caller.Role, authz.ActionUpdate, authz.ResourceSettings, pctx); err != nil {
		return Settings{}, err
	}
	if next.OpeningHour < 0 || next.ClosingHour > 24 || next.OpeningHour >= next.ClosingHour {
		return Settings{}, fmt.Errorf("opening hours %d-%d invalid: %w", next.OpeningHour, next.ClosingHour, shared.ErrValidation)
	}
	if next.MonthlyDueDay < 1 || next.MonthlyDueDay > 28 {
		return Settings{}, fmt.Errorf("monthly due day %d invalid: %w", next.MonthlyDueDay, shared.ErrValidation)
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return Settings{}, err
	}
	return s.repo.Load(ctx)
}
