package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/service"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/response"
)

// VaultOpener builds a vault for a DSN. An empty DSN means the configured
// default database.
type VaultOpener func(ctx context.Context, dsn string) (*service.VaultService, error)

// ConnectionHandler manages the process-wide repository connection.
type ConnectionHandler struct {
	connection *service.ConnectionService
	open       VaultOpener
}

// NewConnectionHandler constructs a connection handler.
func NewConnectionHandler(connection *service.ConnectionService, open VaultOpener) *ConnectionHandler {
	return &ConnectionHandler{connection: connection, open: open}
}

// Connect godoc
// @Summary Connect to a repository, replacing any active connection
// @Description The new vault is fully constructed before the old one is
// @Description closed, so a failed connect leaves the previous connection
// @Description intact.
// @Tags Repository
// @Accept json
// @Produce json
// @Param payload body dto.ConnectRequest false "Optional DSN override"
// @Success 200 {object} response.Envelope
// @Router /repo/connect [post]
func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req dto.ConnectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	vault, err := h.open(c.Request.Context(), req.DSN)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusBadGateway, "repository connection failed"))
		return
	}
	h.connection.Swap(c.Request.Context(), vault)

	response.JSON(c, http.StatusOK, h.status())
}

// Disconnect godoc
// @Summary Close the active repository connection
// @Tags Repository
// @Produce json
// @Success 204 "disconnected"
// @Router /repo/disconnect [post]
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	if err := h.connection.Disconnect(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Report the current connection state
// @Tags Repository
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /repo/status [get]
func (h *ConnectionHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.status())
}

func (h *ConnectionHandler) status() dto.ConnectionStatusResponse {
	vault, err := h.connection.Acquire()
	if err != nil {
		return dto.ConnectionStatusResponse{Connected: false}
	}
	storage := vault.Storage()
	return dto.ConnectionStatusResponse{
		Connected: true,
		MainDir:   storage.MainDir,
		ThumbDir:  storage.ThumbnailDir,
	}
}
