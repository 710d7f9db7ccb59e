package service

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service/audit"
)

var (
	_ OutreachRepository = (*HistoryStore)(nil)
	_ audit.RunRecorder  = (*HistoryStore)(nil)
)

// NewDatabase opens the local history database. It returns nil when the
// database is disabled; the dashboard then runs on the record store alone.
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		cfg.Host, cfg.Username, cfg.Password, cfg.Database, cfg.Port, cfg.SSLMode, cfg.TimeZone)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.OutreachMessage{},
		&models.AuditRun{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// HistoryStore persists outreach messages and audit runs.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (h *HistoryStore) SaveMessage(ctx context.Context, msg *models.OutreachMessage) error {
	if err := h.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create outreach message: %w", err)
	}
	return nil
}

// SaveRun inserts the run on first call and updates it afterwards.
func (h *HistoryStore) SaveRun(ctx context.Context, run *models.AuditRun) error {
	if err := h.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to save audit run %s: %w", run.TaskID, err)
	}
	return nil
}

// RecentRuns lists the latest audit runs for a campaign, newest first.
func (h *HistoryStore) RecentRuns(ctx context.Context, campaignID string, limit int) ([]models.AuditRun, error) {
	var runs []models.AuditRun
	query := h.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if campaignID != "" {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit runs: %w", err)
	}
	return runs, nil
}
