package dto

import "github.com/mediavault/mediavault/internal/models"

// ThumbnailResponse is the external shape of a thumbnail.
type ThumbnailResponse struct {
	ID       int64   `json:"id"`
	FileID   int64   `json:"file_id"`
	Hash     string  `json:"hash"`
	Height   int     `json:"height"`
	Width    int     `json:"width"`
	MimeType *string `json:"mime_type,omitempty"`
}

// ThumbnailResponseFrom maps the internal model to its response shape.
func ThumbnailResponseFrom(thumb models.ThumbnailWithHash) ThumbnailResponse {
	return ThumbnailResponse{
		ID:       thumb.ID,
		FileID:   thumb.FileID,
		Hash:     thumb.Hash,
		Height:   thumb.Height,
		Width:    thumb.Width,
		MimeType: thumb.MimeType,
	}
}

// ThumbnailResponsesFrom maps a slice of thumbnails.
func ThumbnailResponsesFrom(thumbs []models.ThumbnailWithHash) []ThumbnailResponse {
	out := make([]ThumbnailResponse, 0, len(thumbs))
	for _, t := range thumbs {
		out = append(out, ThumbnailResponseFrom(t))
	}
	return out
}
