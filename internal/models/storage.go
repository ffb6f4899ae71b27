package models

import "time"

// StorageLocation is a named root under which content bytes physically live.
// A repository designates one main location and one thumbnail location.
type StorageLocation struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Path      string    `db:"path" json:"path"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ContentDescriptor uniquely identifies stored bytes by content hash within a
// storage location. Identical content maps to one descriptor row.
type ContentDescriptor struct {
	ID         int64     `db:"id" json:"id"`
	LocationID int64     `db:"location_id" json:"location_id"`
	Hash       string    `db:"hash" json:"hash"`
	Size       int64     `db:"size" json:"size"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
