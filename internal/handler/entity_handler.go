package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type EntityHandler struct {
	entityService service.EntityService
	viesService   service.ViesService
}

func NewEntityHandler(entityService service.EntityService, viesService service.ViesService) *EntityHandler {
	return &EntityHandler{entityService: entityService, viesService: viesService}
}

func (h *EntityHandler) RegisterRoutes(router *gin.RouterGroup) {
	entities := router.Group("/api/entities")
	{
		entities.GET("", middleware.RequirePermission("menu-management:read"), h.ListEntities)
		entities.GET("/check-nif", middleware.RequirePermission("menu-management:read"), h.CheckNIF)
		entities.GET("/vies", middleware.RequirePermission("menu-management:read"), h.LookupVies)
		entities.GET("/:id", middleware.RequirePermission("menu-management:read"), h.GetEntity)
		entities.POST("", middleware.RequirePermission("menu-management:create"), h.CreateEntity)
		entities.PUT("/:id", middleware.RequirePermission("menu-management:update"), h.UpdateEntity)
		entities.DELETE("/:id", middleware.RequirePermission("menu-management:delete"), h.DeleteEntity)
	}
}

// ListEntities returns entities with optional type/search filter
// @Summary      List entities
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        type    query     string  false  "Filter by type: client, supplier"
// @Param        search  query     string  false  "Search by name, nif, email"
// @Success      200     {object}  response.Response
// @Router       /api/entities [get]
func (h *EntityHandler) ListEntities(c *gin.Context) {
	entities, err := h.entityService.List(c.Request.Context(), c.Query("type"), c.Query("search"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entities))
}

// GetEntity returns a single entity
// @Summary      Get entity
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Entity ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/entities/{id} [get]
func (h *EntityHandler) GetEntity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid entity ID"))
		return
	}
	entity, err := h.entityService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

// CreateEntity creates a client or supplier, assigning the next number
// @Summary      Create entity
// @Tags         entities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.EntityRequest  true  "Entity payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/entities [post]
func (h *EntityHandler) CreateEntity(c *gin.Context) {
	var req service.EntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entity, err := h.entityService.Create(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entity))
}

// UpdateEntity updates an existing entity
// @Summary      Update entity
// @Tags         entities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "Entity ID"
// @Param        payload  body  service.EntityRequest  true  "Entity payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/entities/{id} [put]
func (h *EntityHandler) UpdateEntity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid entity ID"))
		return
	}

	var req service.EntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entity, err := h.entityService.Update(c.Request.Context(), id, req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

// DeleteEntity soft-deletes an entity; its number is never reused
// @Summary      Delete entity
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Entity ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/entities/{id} [delete]
func (h *EntityHandler) DeleteEntity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid entity ID"))
		return
	}
	if err := h.entityService.Delete(c.Request.Context(), id, requestMeta(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// CheckNIF reports whether a NIF is already registered
// @Summary      Check NIF availability
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        nif  query     string  true  "Tax number"
// @Success      200  {object}  response.Response
// @Router       /api/entities/check-nif [get]
func (h *EntityHandler) CheckNIF(c *gin.Context) {
	exists, err := h.entityService.NIFExists(c.Request.Context(), c.Query("nif"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"exists": exists}))
}

// LookupVies validates a VAT number against the EU registry
// @Summary      VIES VAT lookup
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        nif  query     string  true  "Tax number, with or without country prefix"
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /api/entities/vies [get]
func (h *EntityHandler) LookupVies(c *gin.Context) {
	result, err := h.viesService.Lookup(c.Request.Context(), c.Query("nif"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
