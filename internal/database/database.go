package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database handles run history persistence.
type Database struct {
	db *gorm.DB
}

// NewDatabase opens (or creates) the history database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	database := &Database{db: db}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, err
	}

	return database, nil
}

// Record appends one finished run to the history.
func (d *Database) Record(record *RunRecord) error {
	if record.OriginalSize > 0 && record.CompressedSize > 0 {
		record.CompressionRatio = float64(record.OriginalSize-record.CompressedSize) /
			float64(record.OriginalSize) * 100
	}
	return d.db.Create(record).Error
}

// Recent returns up to limit history entries, newest first.
func (d *Database) Recent(limit int) ([]RunRecord, error) {
	var records []RunRecord
	err := d.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// Totals aggregates the all-time statistics across completed runs.
func (d *Database) Totals() (*Totals, error) {
	var totals Totals

	err := d.db.Model(&RunRecord{}).
		Where("status = ?", "completed").
		Select("COUNT(*) AS runs_completed, " +
			"COALESCE(SUM(page_count), 0) AS pages_done, " +
			"COALESCE(SUM(original_size - compressed_size), 0) AS bytes_saved").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return &totals, nil
}
