package health

import (
	"context"
	"fmt"
	"time"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// RepositoryPort defines data access methods for health records.
type RepositoryPort interface {
	InsertMetric(ctx context.Context, m Metric) (Metric, error)
	GetMetric(ctx context.Context, id string) (Metric, error)
	ListMetrics(ctx context.Context, memberID string) ([]Metric, error)
	UpdateMetric(ctx context.Context, m Metric) (Metric, error)
	DeleteMetric(ctx context.Context, id string) error
	InsertObservation(ctx context.Context, o Observation) (Observation, error)
	GetObservation(ctx context.Context, id string) (Observation, error)
	ListObservations(ctx context.Context, memberID string) ([]Observation, error)
	UpdateObservation(ctx context.Context, id, note string) (Observation, error)
	DeleteObservation(ctx context.Context, id string) error
	MemberRole(ctx context.Context, memberID string) (authz.Role, error)
}

// Service handles body measurements and coach observations.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *authz.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

func (s *Service) targetContext(ctx context.Context, caller authz.Identity, memberID string) (authz.Context, error) {
	pctx := authz.Context{CallerID: caller.ID, CallerRole: caller.Role, TargetID: memberID}
	if authz.IsOwner(caller.ID, memberID) {
		pctx.TargetOwnerRole = caller.Role
		return pctx, nil
	}
	role, err := s.repo.MemberRole(ctx, memberID)
	if err != nil {
		return authz.Context{}, err
	}
	pctx.TargetOwnerRole = role
	return pctx, nil
}

func validMetric(m Metric) error {
	if m.WeightKg <= 0 || m.WeightKg > 500 {
		return fmt.Errorf("weight out of range: %w", shared.ErrValidation)
	}
	if m.HeightCm <= 0 || m.HeightCm > 300 {
		return fmt.Errorf("height out of range: %w", shared.ErrValidation)
	}
	if m.BodyFatPct < 0 || m.BodyFatPct > 100 {
		return fmt.Errorf("body fat percentage out of range: %w", shared.ErrValidation)
	}
	return nil
}

// RecordMetric stores a new measurement for a member.
func (s *Service) RecordMetric(ctx context.Context, caller authz.Identity, m Metric) (map[string]any, error) {
	if err := validMetric(m); err != nil {
		return nil, err
	}
	pctx, err := s.targetContext(ctx, caller, m.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionCreate, authz.ResourceHealthMetrics, pctx); err != nil {
		return nil, err
	}
	m.RecordedBy = caller.ID
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}
	created, err := s.repo.InsertMetric(ctx, m)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceHealthMetrics, metricRecord(created)), nil
}

// ListMetrics returns a member's measurement history, redacted for the caller.
func (s *Service) ListMetrics(ctx context.Context, caller authz.Identity, memberID string) ([]map[string]any, error) {
	pctx, err := s.targetContext(ctx, caller, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceHealthMetrics, pctx); err != nil {
		return nil, err
	}
	metrics, err := s.repo.ListMetrics(ctx, memberID)
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, len(metrics))
	for i, m := range metrics {
		records[i] = metricRecord(m)
	}
	return s.engine.RedactAll(caller.Role, authz.ResourceHealthMetrics, records), nil
}

// UpdateMetric rewrites a measurement.
func (s *Service) UpdateMetric(ctx context.Context, caller authz.Identity, m Metric) (map[string]any, error) {
	if err := validMetric(m); err != nil {
		return nil, err
	}
	current, err := s.repo.GetMetric(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	pctx, err := s.targetContext(ctx, caller, current.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionUpdate, authz.ResourceHealthMetrics, pctx); err != nil {
		return nil, err
	}
	m.MemberID = current.MemberID
	updated, err := s.repo.UpdateMetric(ctx, m)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceHealthMetrics, metricRecord(updated)), nil
}

// DeleteMetric removes a measurement.
func (s *Service) DeleteMetric(ctx context.Context, caller authz.Identity, id string) error {
	current, err := s.repo.GetMetric(ctx, id)
	if err != nil {
		return err
	}
	pctx, err := s.targetContext(ctx, caller, current.MemberID)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionDelete, authz.ResourceHealthMetrics, pctx); err != nil {
		return err
	}
	return s.repo.DeleteMetric(ctx, id)
}

// AddObservation stores a private coach note about a member.
func (s *Service) AddObservation(ctx context.Context, caller authz.Identity, memberID, note string) (map[string]any, error) {
	if note == "" {
		return nil, fmt.Errorf("note must not be empty: %w", shared.ErrValidation)
	}
	pctx, err := s.targetContext(ctx, caller, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionCreate, authz.ResourceCoachObservations, pctx); err != nil {
		return nil, err
	}
	created, err := s.repo.InsertObservation(ctx, Observation{MemberID: memberID, CoachID: caller.ID, Note: note})
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceCoachObservations, observationRecord(created)), nil
}

// ListObservations returns the private notes kept about a member.
func (s *Service) ListObservations(ctx context.Context, caller authz.Identity, memberID string) ([]map[string]any, error) {
	pctx, err := s.targetContext(ctx, caller, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceCoachObservations, pctx); err != nil {
		return nil, err
	}
	observations, err := s.repo.ListObservations(ctx, memberID)
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, len(observations))
	for i, o := range observations {
		records[i] = observationRecord(o)
	}
	return s.engine.RedactAll(caller.Role, authz.ResourceCoachObservations, records), nil
}

// UpdateObservation rewrites a coach note.
func (s *Service) UpdateObservation(ctx context.Context, caller authz.Identity, id, note string) (map[string]any, error) {
	if note == "" {
		return nil, fmt.Errorf("note must not be empty: %w", shared.ErrValidation)
	}
	current, err := s.repo.GetObservation(ctx, id)
	if err != nil {
		return nil, err
	}
	pctx, err := s.targetContext(ctx, caller, current.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionUpdate, authz.ResourceCoachObservations, pctx); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateObservation(ctx, id, note)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceCoachObservations, observationRecord(updated)), nil
}

// DeleteObservation removes a coach note.
func (s *Service) DeleteObservation(ctx context.Context, caller authz.Identity, id string) error {
	current, err := s.repo.GetObservation(ctx, id)
	if err != nil {
		return err
	}
	pctx, err := s.targetContext(ctx, caller, current.MemberID)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionDelete, authz.ResourceCoachObservations, pctx); err != nil {
		return err
	}
	return s.repo.DeleteObservation(ctx, id)
}
