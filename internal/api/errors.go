package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// errorStatus maps a service error to an HTTP status code
func errorStatus(err error) int {
	var vf *service.ValidationFailed
	switch {
	case errors.As(err, &vf):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a JSON error body for err. Internal errors are logged
// and their message is not exposed.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := errorStatus(err)

	var vf *service.ValidationFailed
	switch {
	case errors.As(err, &vf):
		c.JSON(status, gin.H{
			"error":   "validation failed",
			"details": vf.Errors,
		})
	case status == http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
