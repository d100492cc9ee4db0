package database

import (
	"context"
	"fmt"

	"archive-browser/logger"
	"archive-browser/models"

	"gorm.io/gorm"
)

const DefaultRecentLimit = 20

// ScanHistory appends one row per scan pass.
type ScanHistory struct {
	db  *gorm.DB
	log logger.Logger
}

func NewScanHistory(db *gorm.DB, log logger.Logger) *ScanHistory {
	return &ScanHistory{db: db, log: log.With(logger.String("component", "scan_history"))}
}

// ObserveScan records the pass. Write failures are logged, never returned,
// so history never breaks a scan.
func (h *ScanHistory) ObserveScan(ctx context.Context, report models.ScanReport, scanErr error) {
	rec := models.NewScanRecord(report, scanErr)
	if err := h.db.WithContext(ctx).Create(rec).Error; err != nil {
		h.log.Warn("Failed to record scan", logger.String("root", report.Root), logger.Error(err))
	}
}

// Recent returns the newest records first.
func (h *ScanHistory) Recent(ctx context.Context, limit int) ([]models.ScanRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var records []models.ScanRecord
	result := h.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list scan history: %w", result.Error)
	}
	return records, nil
}
