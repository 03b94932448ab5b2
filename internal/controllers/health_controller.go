package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/legalcms/backend/internal/db"
	"github.com/legalcms/backend/internal/logger"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Pinger is an optional dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db       *gorm.DB
	optional map[string]Pinger
}

// NewHealthController checks the database and every named optional
// dependency. Only the database decides the overall status.
func NewHealthController(database *gorm.DB, optional map[string]Pinger) *HealthController {
	return &HealthController{db: database, optional: optional}
}

// serviceStatus reports a dependency as ok or unavailable. The cause is
// logged, never returned, since /health is public.
func serviceStatus(name string, err error) gin.H {
	if err != nil {
		logger.WithError(err, "health").WithField("service", name).Warn("Health check failed")
		return gin.H{"status": "error", "error": "unavailable"}
	}
	return gin.H{"status": "ok", "error": nil}
}

func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var dbErr error
	if hc.db == nil {
		dbErr = errDatabaseNotInitialized
	} else {
		dbErr = db.Ping(ctx, hc.db)
	}

	servicesStatus := gin.H{"database": serviceStatus("database", dbErr)}
	for name, p := range hc.optional {
		servicesStatus[name] = serviceStatus(name, p.Ping(ctx))
	}

	overallStatus := "ok"
	statusCode := http.StatusOK
	if dbErr != nil {
		overallStatus = "error"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"services":  servicesStatus,
	})
}

var errDatabaseNotInitialized = errors.New("database connection not initialized")
