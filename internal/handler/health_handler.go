package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/internal/service"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/response"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	connection *service.ConnectionService
}

// NewHealthHandler constructs a health handler.
func NewHealthHandler(connection *service.ConnectionService) *HealthHandler {
	return &HealthHandler{connection: connection}
}

// Health reports process liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the daemon can serve repository requests.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.connection.Connected() {
		response.Error(c, appErrors.Clone(appErrors.ErrUpstreamDisconnected, "not ready: no repository connection"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"})
}
