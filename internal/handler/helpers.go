package handler

import (
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestMeta collects the actor and request details the activity trail needs
func requestMeta(c *gin.Context) service.RequestMeta {
	meta := service.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if raw, ok := c.Get("userID"); ok {
		if s, ok := raw.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				meta.CauserID = &id
			}
		}
	}
	return meta
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}
