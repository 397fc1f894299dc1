package handler

import (
	"net/http"
	"time"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	calendarService service.CalendarService
}

func NewCalendarHandler(calendarService service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	calendar := router.Group("/api/calendar")
	{
		calendar.GET("/events", middleware.RequirePermission("menu-calendar:read"), h.ListEvents)
		calendar.GET("/events/:id", middleware.RequirePermission("menu-calendar:read"), h.GetEvent)
		calendar.POST("/events", middleware.RequirePermission("menu-calendar:create"), h.CreateEvent)
		calendar.PUT("/events/:id", middleware.RequirePermission("menu-calendar:update"), h.UpdateEvent)
		calendar.DELETE("/events/:id", middleware.RequirePermission("menu-calendar:delete"), h.DeleteEvent)
		calendar.GET("/types", middleware.RequirePermission("menu-calendar:read"), h.ListTypes)
		calendar.GET("/actions", middleware.RequirePermission("menu-calendar:read"), h.ListActions)
	}
}

func parseDateParam(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

// ListEvents returns calendar events in the frontend calendar format. Users
// see their own events plus anything marked shared.
// @Summary      List calendar events
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        start      query     string  false  "Range start (RFC3339 or YYYY-MM-DD)"
// @Param        end        query     string  false  "Range end (RFC3339 or YYYY-MM-DD)"
// @Param        user_id    query     string  false  "Filter by owner"
// @Param        entity_id  query     string  false  "Filter by entity"
// @Success      200        {object}  response.Response
// @Router       /api/calendar/events [get]
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	q := service.CalendarEventQuery{
		UserID:   c.Query("user_id"),
		EntityID: c.Query("entity_id"),
		From:     parseDateParam(c, "start"),
		To:       parseDateParam(c, "end"),
	}
	if raw, ok := c.Get("userID"); ok {
		if s, ok := raw.(string); ok {
			q.VisibleTo = s
		}
	}

	events, err := h.calendarService.ListEvents(c.Request.Context(), q)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}

// GetEvent returns one calendar event
// @Summary      Get calendar event
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/calendar/events/{id} [get]
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid event ID"))
		return
	}
	event, err := h.calendarService.GetEvent(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

// CreateEvent schedules a calendar event for the authenticated user
// @Summary      Create calendar event
// @Tags         calendar
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CalendarEventRequest  true  "Event payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/calendar/events [post]
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	meta := requestMeta(c)
	if meta.CauserID == nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.calendarService.CreateEvent(c.Request.Context(), *meta.CauserID, req, meta)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, event))
}

// UpdateEvent reschedules or edits an event
// @Summary      Update calendar event
// @Tags         calendar
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Event ID"
// @Param        payload  body  service.CalendarEventRequest  true  "Event payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/calendar/events/{id} [put]
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid event ID"))
		return
	}

	var req service.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.calendarService.UpdateEvent(c.Request.Context(), id, req, requestMeta(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

// DeleteEvent removes a calendar event
// @Summary      Delete calendar event
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/calendar/events/{id} [delete]
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid event ID"))
		return
	}
	if err := h.calendarService.DeleteEvent(c.Request.Context(), id, requestMeta(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListTypes returns the active calendar event types
// @Summary      List calendar types
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/calendar/types [get]
func (h *CalendarHandler) ListTypes(c *gin.Context) {
	types, err := h.calendarService.ListTypes(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, types))
}

// ListActions returns the active follow-up actions
// @Summary      List calendar actions
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/calendar/actions [get]
func (h *CalendarHandler) ListActions(c *gin.Context) {
	actions, err := h.calendarService.ListActions(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, actions))
}
