package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobly/catalog-service/internal/auth"
)

const (
	requestIDKey     = "requestId"
	claimsKey        = "claims"
	requestIDHeader  = "X-Request-ID"
	bearerPrefix     = "Bearer "
	maxRequestIDSize = 128
)

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDSize {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"requestId", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Authenticate stores the claims of a valid bearer token on the context. It
// never rejects a request; RequireLogin and RequireAdmin do that.
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if v == nil || !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}
		claims, err := v.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err == nil {
			c.Set(claimsKey, claims)
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// RequireLogin rejects requests without a valid token.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claimsFrom(c) == nil {
			abortWithError(c, errUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose token is missing or not an admin's.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || !claims.IsAdmin {
			abortWithError(c, errUnauthorized)
			return
		}
		c.Next()
	}
}
