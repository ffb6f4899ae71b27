package models

import "time"

// Thumbnail is a rendered preview of a file. Height and width are the actual
// rendered dimensions, not the requested ones.
type Thumbnail struct {
	ID           int64     `db:"id" json:"id"`
	FileID       int64     `db:"file_id" json:"file_id"`
	DescriptorID int64     `db:"descriptor_id" json:"descriptor_id"`
	LocationID   int64     `db:"location_id" json:"location_id"`
	Height       int       `db:"height" json:"height"`
	Width        int       `db:"width" json:"width"`
	MimeType     *string   `db:"mime_type" json:"mime_type,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ThumbnailWithHash joins the thumbnail with its descriptor hash.
type ThumbnailWithHash struct {
	Thumbnail
	Hash string `db:"hash" json:"hash"`
}

// InWindow reports whether the stored dimensions satisfy the tolerance window
// around a requested size. Bounds are computed with truncating arithmetic and
// are inclusive on both ends.
func (t Thumbnail) InWindow(reqHeight, reqWidth int) bool {
	return inRange(t.Height, reqHeight) && inRange(t.Width, reqWidth)
}

func inRange(actual, requested int) bool {
	lower := int(float64(requested) * 0.8)
	upper := int(float64(requested) * 1.2)
	return actual >= lower && actual <= upper
}
