// Package controllers adapts HTTP requests to service calls and service
// results to JSON responses.
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/middleware"
)

const msgInvalidBody = "Invalid request body"

// respondError writes err as {"error": message}. Internal failures are
// logged here, once, with their cause and reported with a generic message.
func respondError(c *gin.Context, err error, component string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		entry := logger.WithError(err, component).WithField("request_id", middleware.RequestID(c))
		if userID := middleware.CurrentUserID(c); userID != "" {
			entry = entry.WithField("user_id", userID)
		}
		entry.Error("Request failed")
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err, "Internal server error")})
}

// bindJSON decodes the request body into v and answers 400 when it cannot.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		logger.Debug("Rejected request body", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return false
	}
	return true
}
