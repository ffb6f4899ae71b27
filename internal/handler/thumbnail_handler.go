package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/service"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/response"
	"github.com/mediavault/mediavault/pkg/thumbnailer"
)

const defaultThumbnailRequest = 250

// ThumbnailHandler serves file previews.
type ThumbnailHandler struct {
	connection *service.ConnectionService
	buffers    *service.BufferService
}

// NewThumbnailHandler constructs a thumbnail handler.
func NewThumbnailHandler(connection *service.ConnectionService, buffers *service.BufferService) *ThumbnailHandler {
	return &ThumbnailHandler{connection: connection, buffers: buffers}
}

// List godoc
// @Summary List stored thumbnails of a file
// @Tags Thumbnails
// @Produce json
// @Param hash path string true "Content hash"
// @Success 200 {object} response.Envelope
// @Router /content/{hash}/thumbnails [get]
func (h *ThumbnailHandler) List(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	thumbs, err := vault.ThumbnailsForFile(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ThumbnailResponsesFrom(thumbs))
}

// Get godoc
// @Summary Get a thumbnail, rendering one when no stored size fits
// @Description Any stored thumbnail within 0.8x to 1.2x of the requested
// @Description dimensions is reused instead of rendering a new one.
// @Tags Thumbnails
// @Produce png
// @Param hash path string true "Content hash"
// @Param height query int false "Requested height, default 250"
// @Param width query int false "Requested width, default 250"
// @Success 200 {file} binary
// @Router /content/{hash}/thumbnail [get]
func (h *ThumbnailHandler) Get(c *gin.Context) {
	// The full request URI keys the buffer so repeated fetches of the same
	// size skip both the window match and the byte store.
	bufferKey := c.Request.URL.RequestURI()
	if data, mime, ok := h.buffers.Get(bufferKey); ok {
		response.Blob(c, mime, data)
		return
	}

	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	height := queryInt(c, "height", defaultThumbnailRequest)
	width := queryInt(c, "width", defaultThumbnailRequest)

	thumb, data, err := vault.GetOrCreateThumbnail(c.Request.Context(), c.Param("hash"), height, width)
	if err != nil {
		response.Error(c, err)
		return
	}
	mime := ""
	if thumb.MimeType != nil {
		mime = *thumb.MimeType
	}
	h.buffers.Put(bufferKey, data, mime)
	response.Blob(c, mime, data)
}

// CreateTier godoc
// @Summary Render a thumbnail at a named size tier
// @Tags Thumbnails
// @Produce json
// @Param hash path string true "Content hash"
// @Param tier path string true "small, medium or large"
// @Success 201 {object} response.Envelope
// @Router /content/{hash}/thumbnail/{tier} [post]
func (h *ThumbnailHandler) CreateTier(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	tier, ok := thumbnailer.ParseTier(c.Param("tier"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown thumbnail tier"))
		return
	}
	thumb, data, err := vault.CreateThumbnailTier(c.Request.Context(), c.Param("hash"), tier)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Stash the rendered bytes under a one-shot key so the client can fetch
	// the payload without re-reading the byte store.
	mime := ""
	if thumb.MimeType != nil {
		mime = *thumb.MimeType
	}
	key := h.buffers.PutOnce(data, mime)

	resp := struct {
		dto.ThumbnailResponse
		BufferKey string `json:"buffer_key"`
	}{dto.ThumbnailResponseFrom(*thumb), key}
	response.Created(c, resp)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
