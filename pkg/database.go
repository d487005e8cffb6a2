package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ai-olympiad/qcm-service/internal/config"
	"github.com/ai-olympiad/qcm-service/internal/models"
)

// InitDatabase opens the PostgreSQL connection and migrates the QCM schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Question{},
		&models.ExamSession{},
		&models.Attempt{},
		&models.AttemptQuestion{},
		&models.Answer{},
	); err != nil {
		return err
	}

	// At most one in-progress attempt per (candidate, session). AutoMigrate
	// cannot express a partial index, so it is created directly.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_qcm_attempts_one_in_progress
		 ON qcm_attempts (candidate_id, session_id)
		 WHERE completed_at IS NULL`,
	).Error
}
