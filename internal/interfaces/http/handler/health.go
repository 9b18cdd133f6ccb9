package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/infrastructure/logger"
	"github.com/codops/backend/internal/interfaces/http/dto"
)

var errNoDatabase = errors.New("no database configured")

// DatabasePinger reports database reachability
type DatabasePinger interface {
	Ping() error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db  DatabasePinger
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabasePinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// Check godoc
//
// An unreachable database yields 503.
//
//	@ID			healthCheck
//	@Summary	Health check
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	dto.HealthResponse
//	@Failure	503	{object}	dto.HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	resp := dto.HealthResponse{Status: "healthy", Time: h.now().UTC(), Database: "ok"}
	status := http.StatusOK

	if err := h.ping(); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h *HealthHandler) ping() error {
	if h.db == nil {
		return errNoDatabase
	}
	return h.db.Ping()
}

// RegisterRoutes implements router.RouteRegistrar
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Check)
}
