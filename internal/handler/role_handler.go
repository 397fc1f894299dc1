package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/api/roles")
	{
		roles.GET("", middleware.RequirePermission("menu-settings:read"), h.ListRoles)
		roles.GET("/catalog", middleware.RequirePermission("menu-settings:read"), h.GetCatalog)
		roles.GET("/:id", middleware.RequirePermission("menu-settings:read"), h.GetRole)
		roles.POST("", middleware.RequirePermission("menu-settings:create"), h.CreateRole)
		roles.PUT("/:id", middleware.RequirePermission("menu-settings:update"), h.UpdateRole)
		roles.DELETE("/:id", middleware.RequirePermission("menu-settings:delete"), h.DeleteRole)
	}
}

// ListRoles returns all roles with their permission grids and user counts
// @Summary      List roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetCatalog returns the permission catalog (menus and actions)
// @Summary      Permission catalog
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/roles/catalog [get]
func (h *RoleHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.roleService.Catalog()))
}

// GetRole returns one role
// @Summary      Get role
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid role ID"))
		return
	}
	role, err := h.roleService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// CreateRole creates a role with the given permission set
// @Summary      Create role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateRoleRequest  true  "Role payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, role))
}

// UpdateRole renames a role and replaces its permission set
// @Summary      Update role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Role ID"
// @Param        payload  body  service.UpdateRoleRequest  true  "Role payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid role ID"))
		return
	}

	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	// cached grants for this role are stale now
	middleware.ClearPermissionCache(role.Name)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// DeleteRole removes a role that has no users assigned
// @Summary      Delete role
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid role ID"))
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), id, requestMeta(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	middleware.ClearPermissionCache("")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
