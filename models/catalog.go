package models

import (
	"time"

	"github.com/samber/lo"
)

// Catalog maps resource ids to resources. It is one consistent view of
// storage produced by a single scan pass and is shared read-only.
type Catalog map[string]*Resource

// Resources returns the catalog's resources in unspecified order.
func (c Catalog) Resources() []*Resource {
	return lo.Values(c)
}

// TotalCaptures counts captures across every resource.
func (c Catalog) TotalCaptures() int {
	return lo.SumBy(lo.Values(c), func(r *Resource) int { return r.CaptureCount() })
}

// FindCapture searches every resource for the capture id.
func (c Catalog) FindCapture(id string) *Capture {
	for _, r := range c {
		if capture := r.CaptureByID(id); capture != nil {
			return capture
		}
	}
	return nil
}

// ScanReport summarises one scan pass.
type ScanReport struct {
	Root      string
	StartedAt time.Time
	Duration  time.Duration
	Resources int
	Captures  int
	// Skipped counts capture directories whose name could not be parsed.
	Skipped int
	// Partial is set when the scan budget ran out before the walk finished.
	Partial bool
}
