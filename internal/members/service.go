package members

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// RepositoryPort defines data access methods for member records.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (Member, error)
	List(ctx context.Context, role authz.Role) ([]Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) (Member, error)
	Deactivate(ctx context.Context, id string) error
}

// AuditPort records sensitive account mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles account and profile operations. Every operation takes the
// caller's identity, fetches the target record first, and only then runs the
// fine-grained authorization check with a fully populated context.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
	audit  AuditPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *authz.Engine, audit AuditPort) *Service {
	return &Service{repo: repo, engine: engine, audit: audit}
}

func (s *Service) recordAudit(ctx context.Context, caller authz.Identity, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.ID,
		Action:   action,
		Entity:   "member_account",
		EntityID: entityID,
		Meta:     meta,
	})
}

// permContext builds the evaluation context for a fetched target record.
func permContext(caller authz.Identity, target Member) authz.Context {
	return authz.Context{
		CallerID:        caller.ID,
		CallerRole:      caller.Role,
		TargetID:        target.ID,
		TargetOwnerRole: target.Role,
	}
}

// GetProfile returns the personal-data view of a member, redacted for the
// caller's role.
func (s *Service) GetProfile(ctx context.Context, caller authz.Identity, memberID string) (map[string]any, error) {
	target, err := s.repo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourcePersonalData, permContext(caller, target)); err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourcePersonalData, profileRecord(target)), nil
}

// UpdateProfile rewrites a member's profile fields.
func (s *Service) UpdateProfile(ctx context.Context, caller authz.Identity, updated Member) (map[string]any, error) {
	target, err := s.repo.Get(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionUpdate, authz.ResourcePersonalData, permContext(caller, target)); err != nil {
		return nil, err
	}
	// Explicit field copy, never a caller-supplied blob: writes follow the
	// same allowlist discipline as read redaction.
	target.Name = strings.TrimSpace(updated.Name)
	target.Email = strings.TrimSpace(updated.Email)
	target.CPF = strings.TrimSpace(updated.CPF)
	target.Phone = strings.TrimSpace(updated.Phone)
	target.BirthDate = updated.BirthDate
	target.Address = strings.TrimSpace(updated.Address)
	target.EmergencyContact = strings.TrimSpace(updated.EmergencyContact)
	if target.Name == "" || target.Email == "" {
		return nil, fmt.Errorf("member name and email required: %w", shared.ErrValidation)
	}
	saved, err := s.repo.Update(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourcePersonalData, profileRecord(saved)), nil
}

// CreateAccount registers a new person. The account's role is part of the
// target context: staff may only create member accounts, managers may also
// create staff and coach accounts.
func (s *Service) CreateAccount(ctx context.Context, caller authz.Identity, m Member) (Member, error) {
	if !m.Role.Valid() {
		return Member{}, fmt.Errorf("unknown role %q: %w", m.Role, shared.ErrValidation)
	}
	pctx := authz.Context{CallerID: caller.ID, CallerRole: caller.Role, TargetOwnerRole: m.Role}
	if err := s.engine.Authorize(caller.Role, authz.ActionCreate, authz.ResourceUsers, pctx); err != nil {
		return Member{}, err
	}
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	if m.Name == "" || m.Email == "" {
		return Member{}, fmt.Errorf("member name and email required: %w", shared.ErrValidation)
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, caller, "account.create", created.ID, map[string]any{"role": string(created.Role)})
	return created, nil
}

// ListAccounts returns accounts the caller may see, redacted per role. The
// role filter is applied before authorization so each returned record was
// individually checked.
func (s *Service) ListAccounts(ctx context.Context, caller authz.Identity, roleFilter authz.Role) ([]map[string]any, error) {
	all, err := s.repo.List(ctx, roleFilter)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(all))
	for _, m := range all {
		if !s.engine.Can(caller.Role, authz.ActionRead, authz.ResourceUsers, permContext(caller, m)) {
			continue
		}
		out = append(out, s.engine.Redact(caller.Role, authz.ResourcePersonalData, profileRecord(m)))
	}
	return out, nil
}

// DeactivateAccount marks an account inactive.
func (s *Service) DeactivateAccount(ctx context.Context, caller authz.Identity, memberID string) error {
	target, err := s.repo.Get(ctx, memberID)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionDelete, authz.ResourceUsers, permContext(caller, target)); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, memberID); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "account.deactivate", memberID, map[string]any{"role": string(target.Role)})
	return nil
}
