package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/service"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/response"
)

// ContentHandler serves raw file content and the transient buffer cache.
// Delivered content is also buffered under its hash so repeat reads within
// the TTL skip the byte store.
type ContentHandler struct {
	connection *service.ConnectionService
	buffers    *service.BufferService
}

// NewContentHandler constructs a content handler.
func NewContentHandler(connection *service.ConnectionService, buffers *service.BufferService) *ContentHandler {
	return &ContentHandler{connection: connection, buffers: buffers}
}

// Read godoc
// @Summary Read raw file content by hash
// @Tags Content
// @Produce octet-stream
// @Param hash path string true "Content hash"
// @Success 200 {file} binary
// @Router /content/{hash} [get]
func (h *ContentHandler) Read(c *gin.Context) {
	hash := c.Param("hash")

	if data, mime, ok := h.buffers.Get(hash); ok {
		response.Blob(c, mime, data)
		return
	}

	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	data, mime, err := vault.ReadFileContent(c.Request.Context(), hash)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.buffers.Put(hash, data, mime)
	response.Blob(c, mime, data)
}

// Tags godoc
// @Summary List tags of the file with the given hash
// @Tags Content
// @Produce json
// @Param hash path string true "Content hash"
// @Success 200 {object} response.Envelope
// @Router /content/{hash}/tags [get]
func (h *ContentHandler) Tags(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	tags, err := vault.TagsForFileHash(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TagResponsesFrom(tags))
}

// ChangeTags godoc
// @Summary Add and remove tags on the file with the given hash
// @Tags Content
// @Accept json
// @Produce json
// @Param hash path string true "Content hash"
// @Param payload body dto.ChangeFileTagsRequest true "Tags to add and remove"
// @Success 200 {object} response.Envelope
// @Router /content/{hash}/tags [post]
func (h *ContentHandler) ChangeTags(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ChangeFileTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tags, err := vault.ChangeFileTags(c.Request.Context(), c.Param("hash"), req.Add, req.Remove)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TagResponsesFrom(tags))
}

// ReadBuffer godoc
// @Summary Read a buffered payload by key
// @Tags Buffers
// @Produce octet-stream
// @Param key path string true "Buffer key"
// @Success 200 {file} binary
// @Router /buffers/{key} [get]
func (h *ContentHandler) ReadBuffer(c *gin.Context) {
	data, mime, ok := h.buffers.Get(c.Param("key"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "buffer expired or unknown"))
		return
	}
	response.Blob(c, mime, data)
}
