package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/kvstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillEntryTimestamps = "2024-04-02_backfill_kv_entry_timestamps"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB, time.Time) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	return applyMigrationsAt(db, logger, time.Now)
}

func applyMigrationsAt(db *gorm.DB, logger *zap.Logger, clock func() time.Time) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillEntryTimestamps, apply: backfillEntryTimestamps},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		appliedAt := clock().UTC()
		if err := migration.apply(db, appliedAt); err != nil {
			return err
		}
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt.Unix()}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows written before updated_at_s existed carry zero.
func backfillEntryTimestamps(db *gorm.DB, appliedAt time.Time) error {
	return db.Model(&kvstore.Entry{}).
		Where("updated_at_s = 0").
		Update("updated_at_s", appliedAt.Unix()).Error
}
