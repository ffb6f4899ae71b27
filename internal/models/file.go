package models

import (
	"strings"
	"time"
)

// FileStatus tracks the lifecycle state of a stored file.
type FileStatus string

const (
	FileStatusImported FileStatus = "IMPORTED"
	FileStatusArchived FileStatus = "ARCHIVED"
	FileStatusDeleted  FileStatus = "DELETED"
)

// ParseFileStatus maps a raw status to a FileStatus.
func ParseFileStatus(raw string) (FileStatus, bool) {
	switch FileStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case FileStatusImported:
		return FileStatusImported, true
	case FileStatusArchived:
		return FileStatusArchived, true
	case FileStatusDeleted:
		return FileStatusDeleted, true
	}
	return "", false
}

// FileType is a coarse classification derived from the mime type.
type FileType string

const (
	FileTypeImage   FileType = "IMAGE"
	FileTypeVideo   FileType = "VIDEO"
	FileTypeAudio   FileType = "AUDIO"
	FileTypeText    FileType = "TEXT"
	FileTypeUnknown FileType = "UNKNOWN"
)

// FileTypeFromMime classifies a mime type string.
func FileTypeFromMime(mime string) FileType {
	switch {
	case mime == "":
		return FileTypeUnknown
	case strings.HasPrefix(mime, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mime, "video/"):
		return FileTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return FileTypeAudio
	case strings.HasPrefix(mime, "text/"):
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// File is a stored media entry. It always resolves to exactly one content
// descriptor and one storage location.
type File struct {
	ID           int64      `db:"id" json:"id"`
	Name         *string    `db:"name" json:"name,omitempty"`
	DescriptorID int64      `db:"descriptor_id" json:"descriptor_id"`
	LocationID   int64      `db:"location_id" json:"location_id"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	MimeType     *string    `db:"mime_type" json:"mime_type,omitempty"`
	Status       FileStatus `db:"status" json:"status"`
	Size         int64      `db:"size" json:"size"`
	CreationTime time.Time  `db:"creation_time" json:"creation_time"`
	ChangeTime   time.Time  `db:"change_time" json:"change_time"`
	ImportTime   time.Time  `db:"import_time" json:"import_time"`
}

// FileWithHash is a file joined with its descriptor hash for responses.
type FileWithHash struct {
	File
	Hash string `db:"hash" json:"hash"`
}

// TagPredicate is one boolean clause in a tag query: the file must carry the
// tag unless Negate is set, in which case it must not.
type TagPredicate struct {
	TagID  int64
	Negate bool
}

// SortKey orders file result sets. Sorting is a post-filter step.
type SortKey struct {
	Field     string
	Ascending bool
}
