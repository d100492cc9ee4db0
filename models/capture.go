package models

import (
	"slices"
	"time"
)

// Capture is one archiving event for a resource, stored in a single
// timestamped directory. Captures are built by the scanner and never
// modified afterwards.
type Capture struct {
	ID         string         `json:"snapshot_id"`
	RequestID  string         `json:"request_id,omitempty"`
	CapturedAt time.Time      `json:"timestamp"`
	Title      string         `json:"title,omitempty"`
	SourceURL  string         `json:"url"`
	Metadata   map[string]any `json:"metadata"`
	Artifacts  []ArtifactKind `json:"available_artifacts"`
	FolderPath string         `json:"-"`
}

// HasArtifact reports whether the artifact was present at scan time.
func (c *Capture) HasArtifact(kind ArtifactKind) bool {
	return slices.Contains(c.Artifacts, kind)
}

func (c *Capture) ArtifactCount() int {
	return len(c.Artifacts)
}
