package media

import (
	"time"

	"github.com/google/uuid"
)

// TypeImage is the only media type the pipeline produces.
const TypeImage = "image"

// Media is one stored asset record.
type Media struct {
	ID        uuid.UUID `json:"id"`
	Disk      string    `json:"disk"`
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	ThumbPath *string   `json:"thumb_path"`
	MIME      string    `json:"mime"`
	Size      int64     `json:"size"`
	Scope     string    `json:"scope"`
	OwnerID   *string   `json:"owner_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Paths returns the non-empty paths stored on the row.
func (m *Media) Paths() []string {
	paths := make([]string, 0, 2)
	if m.Path != "" {
		paths = append(paths, m.Path)
	}
	if m.ThumbPath != nil && *m.ThumbPath != "" && *m.ThumbPath != m.Path {
		paths = append(paths, *m.ThumbPath)
	}
	return paths
}

// Upload is the input of Manager.Ingest.
type Upload struct {
	Filename string
	Data     []byte
	Scope    string
	OwnerID  *string
	Position int
}
