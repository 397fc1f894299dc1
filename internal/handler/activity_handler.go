package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/api/activity-logs")
	{
		logs.GET("", middleware.RequirePermission("menu-settings:read"), h.ListLogs)
	}
}

// ListLogs returns the activity trail, newest first
// @Summary      List activity logs
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        page     query     int     false  "Page number (default: 1)"
// @Param        limit    query     int     false  "Items per page (default: 20)"
// @Param        user_id  query     string  false  "Filter by acting user"
// @Param        from     query     string  false  "Start date (YYYY-MM-DD, inclusive)"
// @Param        to       query     string  false  "End date (YYYY-MM-DD, inclusive)"
// @Param        search   query     string  false  "Search description and category"
// @Success      200      {object}  response.Response
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) ListLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.activityService.Query(c.Request.Context(), service.ActivityQuery{
		CauserID: c.Query("user_id"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, params.Page, params.Limit, total))
}
