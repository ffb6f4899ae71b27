package dto

import "github.com/mediavault/mediavault/internal/models"

// CreateTagsRequest creates tags from raw "namespace:name" strings.
type CreateTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// TagsForFilesRequest resolves tags carried by a set of file hashes.
type TagsForFilesRequest struct {
	Hashes []string `json:"hashes" binding:"required"`
}

// ChangeFileTagsRequest adds and removes tags on a single file.
type ChangeFileTagsRequest struct {
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// TagResponse is the external shape of a tag with its optional namespace.
type TagResponse struct {
	ID        int64   `json:"id"`
	Namespace *string `json:"namespace,omitempty"`
	Name      string  `json:"name"`
}

// TagResponseFrom maps the internal model to its response shape.
func TagResponseFrom(tag models.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Namespace: tag.Namespace,
		Name:      tag.Name,
	}
}

// TagResponsesFrom maps a slice of tags.
func TagResponsesFrom(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponseFrom(t))
	}
	return out
}

// NamespaceResponse is the external shape of a namespace.
type NamespaceResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NamespaceResponseFrom maps the internal model to its response shape.
func NamespaceResponseFrom(ns models.Namespace) NamespaceResponse {
	return NamespaceResponse{ID: ns.ID, Name: ns.Name}
}
