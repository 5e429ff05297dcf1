package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobly/catalog-service/internal/catalog"
)

// errUnauthorized is raised by the auth middleware.
var errUnauthorized = errors.New("Unauthorized")

type notFoundRoute struct{ path string }

func (e *notFoundRoute) Error() string { return "Not Found" }

type errorBody struct {
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) errorBody {
	var (
		ve *catalog.ValidationError
		ce *catalog.ConflictError
		nr *notFoundRoute
	)
	switch {
	case errors.As(err, &ve):
		return errorBody{Message: ve.Msg, Status: http.StatusBadRequest, Details: ve.Problems}
	case errors.Is(err, catalog.ErrNotFound):
		return errorBody{Message: err.Error(), Status: http.StatusNotFound}
	case errors.As(err, &ce):
		return errorBody{Message: ce.Msg, Status: http.StatusConflict}
	case errors.Is(err, errUnauthorized):
		return errorBody{Message: err.Error(), Status: http.StatusUnauthorized}
	case errors.As(err, &nr):
		return errorBody{Message: nr.Error(), Status: http.StatusNotFound}
	}
	return errorBody{Message: "internal server error", Status: http.StatusInternalServerError}
}

// abortWithError writes the {error: {message, status}} envelope.
func abortWithError(c *gin.Context, err error) {
	body := statusFor(err)
	if body.Status == http.StatusInternalServerError {
		slog.Error("request failed",
			"requestId", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err,
		)
	}
	c.AbortWithStatusJSON(body.Status, gin.H{"error": body})
}

// badRequest wraps a body or path problem as a validation error.
func badRequest(msg string) error {
	return &catalog.ValidationError{Msg: msg}
}
