package storage

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jamjam-trek/config"
	"jamjam-trek/models"
)

// OpenDB verbindet sich mit PostgreSQL und migriert die Snapshot-Tabelle.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Snapshot{}); err != nil {
		return nil, err
	}
	return db, nil
}

// SnapshotStore protokolliert Snapshots in der Datenbank.
type SnapshotStore struct {
	DB *gorm.DB
}

// NewSnapshotStore erstellt einen SnapshotStore.
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{DB: db}
}

// Save legt einen Snapshot-Eintrag an.
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	return s.DB.WithContext(ctx).Create(snap).Error
}

// Recent liefert die neuesten Einträge, neueste zuerst.
func (s *SnapshotStore) Recent(ctx context.Context, limit int) ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&snaps).Error; err != nil {
		return nil, err
	}
	return snaps, nil
}
