// Package database stores scan history in SQLite through gorm.
package database

import (
	"archive-browser/logger"
	"archive-browser/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("Failed to connect to database", logger.String("path", path), logger.Error(err))
		return nil, err
	}
	log.Info("Database connection established", logger.String("path", path))

	if err := Migrate(db); err != nil {
		log.Error("Failed to auto-migrate database schema", logger.Error(err))
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ScanRecord{})
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
