package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	FindOrCreatePermission(ctx context.Context, perm *model.Permission) error
	ReplacePermissions(ctx context.Context, role *model.Role, perms []model.Permission) error
	ClearPermissions(ctx context.Context, role *model.Role) error
	PermissionNamesByRoleName(ctx context.Context, roleName string) ([]string, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Save(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Role{}).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByIDWithPermissions(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

// FirstOrCreate under the unique index on name: first wins, concurrent
// creators never duplicate.
func (r *roleRepository) FindOrCreatePermission(ctx context.Context, perm *model.Permission) error {
	err := GetDB(ctx, r.db).Where("name = ?", perm.Name).FirstOrCreate(perm).Error
	if IsDuplicateKey(err) {
		// Lost the race: fetch the winner's row
		return GetDB(ctx, r.db).Where("name = ?", perm.Name).First(perm).Error
	}
	return err
}

func (r *roleRepository) ReplacePermissions(ctx context.Context, role *model.Role, perms []model.Permission) error {
	return GetDB(ctx, r.db).Model(role).Association("Permissions").Replace(perms)
}

func (r *roleRepository) ClearPermissions(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Model(role).Association("Permissions").Clear()
}

func (r *roleRepository) PermissionNamesByRoleName(ctx context.Context, roleName string) ([]string, error) {
	var names []string
	err := GetDB(ctx, r.db).Raw(`
		SELECT p.name FROM permissions p
		INNER JOIN role_permissions rp ON rp.permission_id = p.id
		INNER JOIN roles r ON r.id = rp.role_id
		WHERE r.name = ?
	`, roleName).Pluck("name", &names).Error
	return names, err
}
