package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

type mockRepository struct {
	saved *Settings
}

func (m *mockRepository) Load(ctx context.Context) (Settings, error) {
	if m.saved == nil {
		return DefaultSettings(), nil
	}
	return *m.saved, nil
}

func (m *mockRepository) Save(ctx context.Context, s Settings) error {
	m.saved = &s
	return nil
}

func newService() (*Service, *mockRepository) {
	repo := &mockRepository{}
	return NewService(repo, authz.NewEngine(authz.DefaultTable())), repo
}

func TestAnyRoleReadsSettings(t *testing.T) {
	svc, _ := newService()
	for _, role := range authz.Roles() {
		current, err := svc.Get(context.Background(), authz.Identity{ID: "u1", Role: role})
		require.NoError(t, err, "role %s", role)
		assert.Equal(t, DefaultSettings().StudioName, current.StudioName)
	}
}

func TestAdminUpdatesSettings(t *testing.T) {
	svc, repo := newService()

	next := DefaultSettings()
	next.OpeningHour = 5
	next.ClosingHour = 22
	saved, err := svc.Update(context.Background(), authz.Identity{ID: "a1", Role: authz.RoleAdmin}, next)
	require.NoError(t, err)
	assert.Equal(t, 5, saved.OpeningHour)
	require.NotNil(t, repo.saved)
	assert.Equal(t, 22, repo.saved.ClosingHour)
}

func TestMemberCannotUpdateSettings(t *testing.T) {
	svc, repo := newService()

	_, err := svc.Update(context.Background(), authz.Identity{ID: "m1", Role: authz.RoleMember}, DefaultSettings())
	var perr *authz.PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, authz.ActionUpdate, perr.Action)
	assert.Nil(t, repo.saved)
}

func TestStaffCannotUpdateSettings(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Update(context.Background(), authz.Identity{ID: "s1", Role: authz.RoleStaff}, DefaultSettings())
	var perr *authz.PermissionError
	require.ErrorAs(t, err, &perr)
}

func TestUpdateRejectsInvalidHours(t *testing.T) {
	svc, _ := newService()
	admin := authz.Identity{ID: "a1", Role: authz.RoleAdmin}

	bad := DefaultSettings()
	bad.OpeningHour = 23
	bad.ClosingHour = 6
	_, err := svc.Update(context.Background(), admin, bad)
	require.ErrorIs(t, err, shared.ErrValidation)

	bad = DefaultSettings()
	bad.MonthlyDueDay = 31
	_, err = svc.Update(context.Background(), admin, bad)
	require.ErrorIs(t, err, shared.ErrValidation)
}
