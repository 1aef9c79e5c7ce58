package checkins

import (
	"context"
	"fmt"
	"time"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/settings"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// RepositoryPort defines data access methods for check-ins.
type RepositoryPort interface {
	Insert(ctx context.Context, c CheckIn) (CheckIn, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]CheckIn, error)
	CountByMember(ctx context.Context, memberID string) (int, error)
	MemberRole(ctx context.Context, memberID string) (authz.Role, error)
}

// HistoryPage is one page of a member's check-in history.
type HistoryPage struct {
	CheckIns   []map[string]any
	Pagination shared.Pagination
}

// Service handles gate check-ins. Studio settings arrive as an explicit
// read-only value with each call; the service holds no configuration state.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *authz.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// SelfCheckIn records the caller entering the studio.
func (s *Service) SelfCheckIn(ctx context.Context, caller authz.Identity, cfg settings.Settings, now time.Time) (CheckIn, error) {
	pctx := authz.Context{
		CallerID:        caller.ID,
		CallerRole:      caller.Role,
		TargetID:        caller.ID,
		TargetOwnerRole: caller.Role,
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionCreate, authz.ResourceCheckIns, pctx); err != nil {
		return CheckIn{}, err
	}
	if !cfg.OpenAt(now) {
		return CheckIn{}, fmt.Errorf("studio closed at %02d:00: %w", now.Hour(), shared.ErrValidation)
	}
	return s.repo.Insert(ctx, CheckIn{MemberID: caller.ID, RegisteredBy: caller.ID, At: now})
}

// RegisterCheckIn records a check-in on behalf of a member, the front-desk
// path. The target's role is resolved before authorization so the
// staff-only-handles-members rule can be evaluated.
func (s *Service) RegisterCheckIn(ctx context.Context, caller authz.Identity, cfg settings.Settings, memberID string, now time.Time) (CheckIn, error) {
	targetRole, err := s.repo.MemberRole(ctx, memberID)
	if err != nil {
		return CheckIn{}, err
	}
	pctx := authz.Context{
		CallerID:        caller.ID,
		CallerRole:      caller.Role,
		TargetID:        memberID,
		TargetOwnerRole: targetRole,
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionCreate, authz.ResourceCheckIns, pctx); err != nil {
		return CheckIn{}, err
	}
	if !cfg.OpenAt(now) {
		return CheckIn{}, fmt.Errorf("studio closed at %02d:00: %w", now.Hour(), shared.ErrValidation)
	}
	return s.repo.Insert(ctx, CheckIn{MemberID: memberID, RegisteredBy: caller.ID, At: now})
}

// History returns a page of a member's check-in history. A member fetching
// their own history takes the ownership-only shortcut; any other caller goes
// through the full policy check against the target's role.
func (s *Service) History(ctx context.Context, caller authz.Identity, memberID string, page, perPage int) (HistoryPage, error) {
	if authz.IsOwner(caller.ID, memberID) {
		pctx := authz.Context{CallerID: caller.ID, CallerRole: caller.Role, TargetID: memberID}
		if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceCheckIns, pctx); err != nil {
			return HistoryPage{}, err
		}
	} else {
		targetRole, err := s.repo.MemberRole(ctx, memberID)
		if err != nil {
			return HistoryPage{}, err
		}
		pctx := authz.Context{
			CallerID:        caller.ID,
			CallerRole:      caller.Role,
			TargetID:        memberID,
			TargetOwnerRole: targetRole,
		}
		if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceCheckIns, pctx); err != nil {
			return HistoryPage{}, err
		}
	}

	total, err := s.repo.CountByMember(ctx, memberID)
	if err != nil {
		return HistoryPage{}, err
	}
	pagination := shared.NewPagination(page, perPage, total)
	items, err := s.repo.ListByMember(ctx, memberID, pagination.PerPage, (pagination.Page-1)*pagination.PerPage)
	if err != nil {
		return HistoryPage{}, err
	}
	records := make([]map[string]any, len(items))
	for i, c := range items {
		records[i] = record(c)
	}
	out := s.engine.RedactAll(caller.Role, authz.ResourceCheckIns, records)
	return HistoryPage{CheckIns: out, Pagination: pagination}, nil
}
