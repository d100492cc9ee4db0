package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanRecord is one row of scan history.
type ScanRecord struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Root       string    `gorm:"not null" json:"root"`
	StartedAt  time.Time `gorm:"index;not null" json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Resources  int       `json:"resources"`
	Captures   int       `json:"captures"`
	Skipped    int       `json:"skipped"`
	Partial    bool      `json:"partial"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns a uuid when the caller left ID empty.
func (r *ScanRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewScanRecord converts a scan report into a history row. scanErr is the
// error of a failed pass, if any.
func NewScanRecord(report ScanReport, scanErr error) *ScanRecord {
	rec := &ScanRecord{
		Root:       report.Root,
		StartedAt:  report.StartedAt.UTC(),
		DurationMS: report.Duration.Milliseconds(),
		Resources:  report.Resources,
		Captures:   report.Captures,
		Skipped:    report.Skipped,
		Partial:    report.Partial,
	}
	if scanErr != nil {
		rec.Error = scanErr.Error()
	}
	return rec
}
