package service

import (
	"context"
	"testing"

	"backoffice/internal/model"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRoleServiceForTest() (RoleService, *fakeRoleRepo, *fakeActivityRepo) {
	roleRepo := newFakeRoleRepo()
	activityRepo := &fakeActivityRepo{}
	activity := NewActivityService(activityRepo, zap.NewNop())
	return NewRoleService(roleRepo, activity), roleRepo, activityRepo
}

func TestSynchronizeReplacesFullSet(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	role := &model.Role{Name: "Teste"}
	require.NoError(t, repo.Create(ctx, role))

	require.NoError(t, svc.Synchronize(ctx, role, []string{"menu-sales:read", "menu-sales:create"}))
	assert.ElementsMatch(t, []string{"menu-sales:read", "menu-sales:create"}, repo.grantNames(role.ID))

	// replacing {read,create} with {create,update} drops read entirely
	require.NoError(t, svc.Synchronize(ctx, role, []string{"menu-sales:create", "menu-sales:update"}))
	assert.ElementsMatch(t, []string{"menu-sales:create", "menu-sales:update"}, repo.grantNames(role.ID))

	// empty set revokes everything
	require.NoError(t, svc.Synchronize(ctx, role, nil))
	assert.Empty(t, repo.grantNames(role.ID))
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	role := &model.Role{Name: "Teste"}
	require.NoError(t, repo.Create(ctx, role))

	set := []string{"menu-management:read", "menu-calendar:read"}
	require.NoError(t, svc.Synchronize(ctx, role, set))
	require.NoError(t, svc.Synchronize(ctx, role, set))

	assert.ElementsMatch(t, set, repo.grantNames(role.ID))
	// permission rows are created once, not duplicated
	assert.Len(t, repo.perms, 2)
}

func TestSynchronizeRejectsUnknownPermission(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	role := &model.Role{Name: "Teste"}
	require.NoError(t, repo.Create(ctx, role))

	err := svc.Synchronize(ctx, role, []string{"menu-sales:read", "menu-bogus:read"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	err = svc.Synchronize(ctx, role, []string{"menu-sales:launch"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSynchronizeDeduplicatesInput(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	role := &model.Role{Name: "Teste"}
	require.NoError(t, repo.Create(ctx, role))

	require.NoError(t, svc.Synchronize(ctx, role, []string{"menu-sales:read", "menu-sales:read"}))
	assert.Equal(t, []string{"menu-sales:read"}, repo.grantNames(role.ID))
}

func TestSeedCreatesDefaultRolesOnce(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx))
	assert.Len(t, repo.roles, 4)

	admin, err := repo.FindByName(ctx, "Administrador")
	require.NoError(t, err)
	assert.True(t, admin.IsSystem)
	assert.Len(t, repo.grantNames(admin.ID), len(Menus)*len(Actions))

	gerente, err := repo.FindByName(ctx, "Gerente")
	require.NoError(t, err)
	assert.Equal(t, "menu-finance", gerente.DeniedMenus)
	for _, name := range repo.grantNames(gerente.ID) {
		assert.NotContains(t, name, "menu-finance")
	}

	viewer, err := repo.FindByName(ctx, "Visualizador")
	require.NoError(t, err)
	for _, name := range repo.grantNames(viewer.ID) {
		assert.Contains(t, name, ":read")
	}
}

func TestDeleteRoleRecordsActivityBeforeRemoval(t *testing.T) {
	svc, repo, activityRepo := newRoleServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRoleRequest{Name: "Temporário"}, RequestMeta{})
	require.NoError(t, err)

	role, err := repo.FindByName(ctx, created.Name)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, role.ID, RequestMeta{}))

	descriptions := activityRepo.descriptions()
	require.NotEmpty(t, descriptions)
	assert.Equal(t, "Removeu perfil: Temporário", descriptions[len(descriptions)-1])

	_, err = repo.FindByID(ctx, role.ID)
	assert.Error(t, err)
}

func TestDeleteRoleBlockedWhenAssigned(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	role := &model.Role{Name: "Ocupado"}
	require.NoError(t, repo.Create(ctx, role))
	repo.userCount[role.ID] = 3

	err := svc.Delete(ctx, role.ID, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestDeleteSystemRoleRejected(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	admin, err := repo.FindByName(ctx, "Administrador")
	require.NoError(t, err)

	err = svc.Delete(ctx, admin.ID, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestRoleResponseGroupsPermissionsByMenu(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRoleRequest{
		Name:        "Comercial",
		Permissions: []string{"menu-sales:read", "menu-sales:create"},
	}, RequestMeta{})
	require.NoError(t, err)

	role, err := repo.FindByName(ctx, "Comercial")
	require.NoError(t, err)
	repo.userCount[role.ID] = 2

	res, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, res.Name)
	assert.Equal(t, int64(2), res.UsersCount)
	require.Len(t, res.Permissions, len(Menus))

	for _, row := range res.Permissions {
		if row.Menu == "menu-sales" {
			assert.True(t, row.CanRead)
			assert.True(t, row.CanCreate)
			assert.False(t, row.CanUpdate)
			assert.False(t, row.CanDelete)
		} else {
			assert.False(t, row.CanRead)
		}
	}
}

func TestCreateRoleBadPermissionLeavesNoRow(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRoleRequest{
		Name:        "Fantasma",
		Permissions: []string{"menu-bogus:read"},
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// nothing persisted, so retrying with a fixed set succeeds
	_, err = repo.FindByName(ctx, "Fantasma")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	created, err := svc.Create(ctx, CreateRoleRequest{
		Name:        "Fantasma",
		Permissions: []string{"menu-sales:read"},
	}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Fantasma", created.Name)
}

func TestUpdateRoleBadPermissionKeepsNameAndGrants(t *testing.T) {
	svc, repo, _ := newRoleServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRoleRequest{
		Name:        "Equipa",
		Permissions: []string{"menu-sales:read"},
	}, RequestMeta{})
	require.NoError(t, err)

	roleID := uuid.MustParse(created.ID)
	_, err = svc.Update(ctx, roleID, UpdateRoleRequest{
		Name:        "Equipa Nova",
		Permissions: []string{"menu-sales:fly"},
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	role, err := repo.FindByID(ctx, roleID)
	require.NoError(t, err)
	assert.Equal(t, "Equipa", role.Name)
	assert.ElementsMatch(t, []string{"menu-sales:read"}, repo.grantNames(role.ID))
}
