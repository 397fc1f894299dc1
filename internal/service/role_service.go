package service

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Menus and Actions form the permission catalog. A permission name is always
// "<menu>:<action>" with both parts drawn from these lists.
var Menus = []string{
	"menu-management",
	"menu-sales",
	"menu-calendar",
	"menu-settings",
	"menu-finance",
}

var Actions = []string{"create", "read", "update", "delete"}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// RolePermissionRow flattens one menu's grants for the settings screen
type RolePermissionRow struct {
	Menu      string `json:"menu"`
	CanCreate bool   `json:"can_create"`
	CanRead   bool   `json:"can_read"`
	CanUpdate bool   `json:"can_update"`
	CanDelete bool   `json:"can_delete"`
}

type RoleResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	IsSystem    bool                `json:"is_system"`
	UsersCount  int64               `json:"users_count"`
	Permissions []RolePermissionRow `json:"permissions"`
}

type RoleService interface {
	Create(ctx context.Context, req CreateRoleRequest, meta RequestMeta) (*RoleResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRoleRequest, meta RequestMeta) (*RoleResponse, error)
	Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error
	Get(ctx context.Context, id uuid.UUID) (*RoleResponse, error)
	List(ctx context.Context) ([]RoleResponse, error)
	Catalog() map[string][]string

	// Synchronize replaces a role's permission set with exactly the given
	// names, creating missing permission rows on the fly. Passing the same
	// set twice leaves the role unchanged.
	Synchronize(ctx context.Context, role *model.Role, permissionNames []string) error

	// Seed creates the default roles once. Existing roles are left alone.
	Seed(ctx context.Context) error
}

type roleService struct {
	roles    repository.RoleRepository
	activity ActivityService
}

func NewRoleService(roles repository.RoleRepository, activity ActivityService) RoleService {
	return &roleService{roles: roles, activity: activity}
}

func (s *roleService) Catalog() map[string][]string {
	return map[string][]string{
		"menus":   Menus,
		"actions": Actions,
	}
}

func validPermissionName(name string) bool {
	menu, action, ok := strings.Cut(name, ":")
	if !ok {
		return false
	}
	menuOK := false
	for _, m := range Menus {
		if m == menu {
			menuOK = true
			break
		}
	}
	if !menuOK {
		return false
	}
	for _, a := range Actions {
		if a == action {
			return true
		}
	}
	return false
}

// validatePermissionNames rejects the whole request before any row is
// touched, so a bad name never leaves a half-configured role behind.
func validatePermissionNames(names []string) error {
	for _, name := range names {
		if !validPermissionName(name) {
			return apperror.Validation(fmt.Sprintf("unknown permission %q", name))
		}
	}
	return nil
}

func (s *roleService) Synchronize(ctx context.Context, role *model.Role, permissionNames []string) error {
	if err := validatePermissionNames(permissionNames); err != nil {
		return err
	}
	seen := make(map[string]bool, len(permissionNames))
	perms := make([]model.Permission, 0, len(permissionNames))
	for _, name := range permissionNames {
		if seen[name] {
			continue
		}
		seen[name] = true

		perm := model.Permission{Name: name}
		if err := s.roles.FindOrCreatePermission(ctx, &perm); err != nil {
			return err
		}
		perms = append(perms, perm)
	}

	if len(perms) == 0 {
		return s.roles.ClearPermissions(ctx, role)
	}
	return s.roles.ReplacePermissions(ctx, role, perms)
}

func (s *roleService) Create(ctx context.Context, req CreateRoleRequest, meta RequestMeta) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("role name is required")
	}
	if err := validatePermissionNames(req.Permissions); err != nil {
		return nil, err
	}
	if existing, err := s.roles.FindByName(ctx, name); err == nil && existing != nil {
		return nil, apperror.Conflict("role name already in use", nil)
	}

	role := &model.Role{Name: name}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	if err := s.Synchronize(ctx, role, req.Permissions); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAccess,
		Meta:        meta,
		Subject:     &Subject{Kind: "role", ID: role.ID.String()},
		Description: "Criou perfil: " + role.Name,
	})

	return s.Get(ctx, role.ID)
}

func (s *roleService) Update(ctx context.Context, id uuid.UUID, req UpdateRoleRequest, meta RequestMeta) (*RoleResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("role not found", err)
		}
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("role name is required")
	}
	if err := validatePermissionNames(req.Permissions); err != nil {
		return nil, err
	}
	if name != role.Name {
		if existing, err := s.roles.FindByName(ctx, name); err == nil && existing != nil {
			return nil, apperror.Conflict("role name already in use", nil)
		}
		role.Name = name
		if err := s.roles.Update(ctx, role); err != nil {
			return nil, err
		}
	}

	if err := s.Synchronize(ctx, role, req.Permissions); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAccess,
		Meta:        meta,
		Subject:     &Subject{Kind: "role", ID: role.ID.String()},
		Description: "Atualizou perfil: " + role.Name,
	})

	return s.Get(ctx, role.ID)
}

func (s *roleService) Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("role not found", err)
		}
		return err
	}
	if role.IsSystem {
		return apperror.Validation("system roles cannot be deleted")
	}
	if count, err := s.roles.CountUsers(ctx, role.ID); err != nil {
		return err
	} else if count > 0 {
		return apperror.Conflict("role is still assigned to users", nil)
	}

	// recorded first so the trail keeps the name even if the row is gone
	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAccess,
		Meta:        meta,
		Subject:     &Subject{Kind: "role", ID: role.ID.String()},
		Description: "Removeu perfil: " + role.Name,
	})

	return s.roles.Delete(ctx, role.ID)
}

func (s *roleService) Get(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.roles.FindByIDWithPermissions(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("role not found", err)
		}
		return nil, err
	}
	return s.toResponse(ctx, role)
}

func (s *roleService) List(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		r, err := s.toResponse(ctx, &roles[i])
		if err != nil {
			return nil, err
		}
		res = append(res, *r)
	}
	return res, nil
}

func (s *roleService) toResponse(ctx context.Context, role *model.Role) (*RoleResponse, error) {
	count, err := s.roles.CountUsers(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	granted := make(map[string]bool, len(role.Permissions))
	for _, p := range role.Permissions {
		granted[p.Name] = true
	}

	rows := make([]RolePermissionRow, 0, len(Menus))
	for _, menu := range Menus {
		rows = append(rows, RolePermissionRow{
			Menu:      menu,
			CanCreate: granted[menu+":create"],
			CanRead:   granted[menu+":read"],
			CanUpdate: granted[menu+":update"],
			CanDelete: granted[menu+":delete"],
		})
	}

	return &RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		IsSystem:    role.IsSystem,
		UsersCount:  count,
		Permissions: rows,
	}, nil
}

// seedSpec pairs a default role with the permissions it starts with
type seedSpec struct {
	role  model.Role
	perms []string
}

func defaultRoles() []seedSpec {
	all := func(denied ...string) []string {
		skip := make(map[string]bool, len(denied))
		for _, d := range denied {
			skip[d] = true
		}
		var names []string
		for _, m := range Menus {
			if skip[m] {
				continue
			}
			for _, a := range Actions {
				names = append(names, m+":"+a)
			}
		}
		return names
	}
	readOnly := func() []string {
		var names []string
		for _, m := range Menus {
			names = append(names, m+":read")
		}
		return names
	}
	operator := func() []string {
		var names []string
		for _, m := range []string{"menu-management", "menu-sales", "menu-calendar"} {
			names = append(names, m+":read", m+":create")
		}
		return names
	}

	return []seedSpec{
		{role: model.Role{Name: "Administrador", IsSystem: true}, perms: all()},
		{role: model.Role{Name: "Gerente", IsSystem: true, DeniedMenus: "menu-finance"}, perms: all("menu-finance")},
		{role: model.Role{Name: "Operador", IsSystem: true}, perms: operator()},
		{role: model.Role{Name: "Visualizador", IsSystem: true}, perms: readOnly()},
	}
}

func (s *roleService) Seed(ctx context.Context) error {
	for _, spec := range defaultRoles() {
		if existing, err := s.roles.FindByName(ctx, spec.role.Name); err == nil && existing != nil {
			continue
		}
		role := spec.role
		if err := s.roles.Create(ctx, &role); err != nil {
			return err
		}
		if err := s.Synchronize(ctx, &role, spec.perms); err != nil {
			return err
		}
	}
	return nil
}
