package models

import (
	"time"

	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

// Resource is a logical address (domain plus path segment) together with
// its captures, newest first. A Resource always holds at least one capture.
type Resource struct {
	ID           string     `json:"url_id"`
	CanonicalURL string     `json:"original_url"`
	FolderName   string     `json:"folder_name"`
	Captures     []*Capture `json:"snapshots"`
}

func (r *Resource) CaptureCount() int {
	return len(r.Captures)
}

// FirstCaptured returns the earliest capture instant.
func (r *Resource) FirstCaptured() (time.Time, bool) {
	if len(r.Captures) == 0 {
		return time.Time{}, false
	}
	first := lo.MinBy(r.Captures, func(a, b *Capture) bool {
		return a.CapturedAt.Before(b.CapturedAt)
	})
	return first.CapturedAt, true
}

// LastCaptured returns the most recent capture instant.
func (r *Resource) LastCaptured() (time.Time, bool) {
	if len(r.Captures) == 0 {
		return time.Time{}, false
	}
	last := lo.MaxBy(r.Captures, func(a, b *Capture) bool {
		return a.CapturedAt.After(b.CapturedAt)
	})
	return last.CapturedAt, true
}

// DateRange renders the span of capture dates, e.g. "2024-03-15 to 2024-03-16".
// Captures on a single day collapse to that day.
func (r *Resource) DateRange() string {
	first, ok := r.FirstCaptured()
	if !ok {
		return ""
	}
	last, _ := r.LastCaptured()

	from, to := first.Format(dateLayout), last.Format(dateLayout)
	if from == to {
		return from
	}
	return from + " to " + to
}

// CaptureByID finds one of this resource's captures.
func (r *Resource) CaptureByID(id string) *Capture {
	c, ok := lo.Find(r.Captures, func(c *Capture) bool { return c.ID == id })
	if !ok {
		return nil
	}
	return c
}

// HasArtifact reports whether any capture carries the artifact.
func (r *Resource) HasArtifact(kind ArtifactKind) bool {
	return lo.SomeBy(r.Captures, func(c *Capture) bool { return c.HasArtifact(kind) })
}
