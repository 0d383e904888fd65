package types

import "time"

// FileResource is metadata for a team file attachment. The bytes live in
// object storage under ObjectKey; this row is the source of truth for
// listing and authorization.
type FileResource struct {
	ID          int       `json:"id" db:"id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	UploadedBy  int       `json:"uploaded_by" db:"uploaded_by"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	ObjectKey   string    `json:"-" db:"object_key"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
