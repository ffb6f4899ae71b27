package dto

import (
	"time"

	"github.com/mediavault/mediavault/internal/models"
)

// AddFileRequest carries new file content. Content is base64 in JSON bodies;
// mime is optional and sniffed from the bytes when absent.
type AddFileRequest struct {
	Name         *string    `json:"name,omitempty"`
	MimeType     *string    `json:"mime_type,omitempty"`
	Content      []byte     `json:"content" binding:"required"`
	CreationTime *time.Time `json:"creation_time,omitempty"`
	ChangeTime   *time.Time `json:"change_time,omitempty"`
}

// AddFileFromPathRequest imports a file readable on the daemon host.
type AddFileFromPathRequest struct {
	Path string `json:"path" binding:"required"`
}

// TagQuery is one clause of a find-files request.
type TagQuery struct {
	Tag    string `json:"tag" binding:"required"`
	Negate bool   `json:"negate"`
}

// SortKeyRequest orders find-files results.
type SortKeyRequest struct {
	Field     string `json:"field" binding:"required"`
	Ascending bool   `json:"ascending"`
}

// FindFilesRequest is a conjunction of tag predicates plus sort keys.
type FindFilesRequest struct {
	Tags   []TagQuery       `json:"tags" binding:"required"`
	SortBy []SortKeyRequest `json:"sort_by,omitempty"`
}

// UpdateFileNameRequest renames a file's display name.
type UpdateFileNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateFileStatusRequest moves a file through its lifecycle.
type UpdateFileStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FileResponse is the external shape of a stored file.
type FileResponse struct {
	ID           int64     `json:"id"`
	Name         *string   `json:"name,omitempty"`
	Hash         string    `json:"hash"`
	FileType     string    `json:"file_type"`
	MimeType     *string   `json:"mime_type,omitempty"`
	Status       string    `json:"status"`
	Size         int64     `json:"size"`
	CreationTime time.Time `json:"creation_time"`
	ChangeTime   time.Time `json:"change_time"`
	ImportTime   time.Time `json:"import_time"`
}

// FileResponseFrom maps the internal model to its response shape.
func FileResponseFrom(file models.FileWithHash) FileResponse {
	return FileResponse{
		ID:           file.ID,
		Name:         file.Name,
		Hash:         file.Hash,
		FileType:     string(file.FileType),
		MimeType:     file.MimeType,
		Status:       string(file.Status),
		Size:         file.Size,
		CreationTime: file.CreationTime,
		ChangeTime:   file.ChangeTime,
		ImportTime:   file.ImportTime,
	}
}

// FileResponsesFrom maps a slice of files.
func FileResponsesFrom(files []models.FileWithHash) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, FileResponseFrom(f))
	}
	return out
}
