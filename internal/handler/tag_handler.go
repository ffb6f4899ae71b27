package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/service"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/response"
)

// TagHandler handles tag catalog endpoints.
type TagHandler struct {
	connection *service.ConnectionService
}

// NewTagHandler constructs a tag handler.
func NewTagHandler(connection *service.ConnectionService) *TagHandler {
	return &TagHandler{connection: connection}
}

// List godoc
// @Summary List every tag in the catalog
// @Tags Tags
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tags [get]
func (h *TagHandler) List(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	tags, err := vault.Tags().All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TagResponsesFrom(tags))
}

// Create godoc
// @Summary Create tags from raw namespace:name strings
// @Description Existing tags are returned as-is; creating the same tag twice
// @Description yields one row.
// @Tags Tags
// @Accept json
// @Produce json
// @Param payload body dto.CreateTagsRequest true "Raw tag strings"
// @Success 201 {object} response.Envelope
// @Router /tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pairs, err := service.ParseTags(req.Tags)
	if err != nil {
		response.Error(c, err)
		return
	}
	tags, err := vault.Tags().AddAll(c.Request.Context(), pairs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.TagResponsesFrom(tags))
}

// ForFiles godoc
// @Summary List the distinct tags across a set of file hashes
// @Tags Tags
// @Accept json
// @Produce json
// @Param payload body dto.TagsForFilesRequest true "Content hashes"
// @Success 200 {object} response.Envelope
// @Router /tags/files [post]
func (h *TagHandler) ForFiles(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TagsForFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tags, err := vault.Tags().ForHashes(c.Request.Context(), req.Hashes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TagResponsesFrom(tags))
}
