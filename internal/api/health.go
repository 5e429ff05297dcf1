package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "catalog-service"

func (h *Handler) healthCheck(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": h.version,
	}
	if h.health != nil {
		ok, detail := h.health.Healthy()
		body["database"] = detail
		if !ok {
			body["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}

// whoAmI returns the caller's token claims.
func (h *Handler) whoAmI(c *gin.Context) {
	claims := claimsFrom(c)
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"username": claims.Username,
		"isAdmin":  claims.IsAdmin,
	}})
}
