package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/models"
	"github.com/mediavault/mediavault/internal/service"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/response"
)

// FileHandler handles file catalog endpoints. Every request resolves the
// active vault first so a disconnected repository fails uniformly.
type FileHandler struct {
	connection *service.ConnectionService
}

// NewFileHandler constructs a file handler.
func NewFileHandler(connection *service.ConnectionService) *FileHandler {
	return &FileHandler{connection: connection}
}

// Add godoc
// @Summary Add a file from inline content
// @Tags Files
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body dto.AddFileRequest true "File payload, content base64-encoded"
// @Success 201 {object} response.Envelope
// @Router /files [post]
func (h *FileHandler) Add(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := bindAddFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := vault.AddFile(c.Request.Context(), *req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FileResponseFrom(*file))
}

// bindAddFile accepts either a JSON body with base64 content or a multipart
// upload with a "file" part.
func bindAddFile(c *gin.Context) (*dto.AddFileRequest, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file part")
		}
		part, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer part.Close()
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}
		req := dto.AddFileRequest{Content: data}
		if header.Filename != "" {
			name := header.Filename
			req.Name = &name
		}
		if mime := header.Header.Get("Content-Type"); mime != "" {
			req.MimeType = &mime
		}
		return &req, nil
	}

	var req dto.AddFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return &req, nil
}

// AddFromPath godoc
// @Summary Import a file from a path on the daemon host
// @Tags Files
// @Accept json
// @Produce json
// @Param payload body dto.AddFileFromPathRequest true "Path payload"
// @Success 201 {object} response.Envelope
// @Router /files/path [post]
func (h *FileHandler) AddFromPath(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AddFileFromPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	file, err := vault.AddFileFromPath(c.Request.Context(), req.Path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FileResponseFrom(*file))
}

// List godoc
// @Summary List all files
// @Tags Files
// @Produce json
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	var sortBy []models.SortKey
	if field := c.Query("sort"); field != "" {
		sortBy = append(sortBy, models.SortKey{Field: field, Ascending: c.Query("order") == "asc"})
	}
	files, err := vault.Files(c.Request.Context(), sortBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FileResponsesFrom(files))
}

// Find godoc
// @Summary Find files by tag predicates
// @Tags Files
// @Accept json
// @Produce json
// @Param payload body dto.FindFilesRequest true "Conjunction of tag clauses"
// @Success 200 {object} response.Envelope
// @Router /files/find [post]
func (h *FileHandler) Find(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.FindFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	files, err := vault.FindFilesByTags(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FileResponsesFrom(files))
}

// Get godoc
// @Summary Get file by id
// @Tags Files
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} response.Envelope
// @Router /files/{id} [get]
func (h *FileHandler) Get(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file id must be numeric"))
		return
	}
	file, err := vault.FileByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FileResponseFrom(*file))
}

// UpdateName godoc
// @Summary Rename a file
// @Tags Files
// @Accept json
// @Produce json
// @Param id path int true "File ID"
// @Param payload body dto.UpdateFileNameRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/name [patch]
func (h *FileHandler) UpdateName(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file id must be numeric"))
		return
	}
	var req dto.UpdateFileNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	file, err := vault.UpdateFileName(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FileResponseFrom(*file))
}

// UpdateStatus godoc
// @Summary Move a file through its lifecycle
// @Tags Files
// @Accept json
// @Produce json
// @Param id path int true "File ID"
// @Param payload body dto.UpdateFileStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /files/{id}/status [patch]
func (h *FileHandler) UpdateStatus(c *gin.Context) {
	vault, err := h.connection.Acquire()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file id must be numeric"))
		return
	}
	var req dto.UpdateFileStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	file, err := vault.UpdateFileStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FileResponseFrom(*file))
}
