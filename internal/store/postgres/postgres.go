package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/draftnight/draft-backend/internal/store"
)

// The snapshot table holds a single row that is overwritten on every save.
const snapshotRowID = 1

type snapshotRow struct {
	ID      uint `gorm:"primaryKey"`
	Payload []byte
	SavedAt time.Time
}

func (snapshotRow) TableName() string { return "draft_snapshots" }

type eventRow struct {
	ID      string `gorm:"primaryKey;size:36"`
	At      time.Time
	Type    string
	Context string
}

func (eventRow) TableName() string { return "draft_events" }

// Store is the PostgreSQL snapshot store, for deployments where the bolt
// file on local disk is not durable enough.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.AutoMigrate(&snapshotRow{}, &eventRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(snap store.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	row := snapshotRow{ID: snapshotRowID, Payload: payload, SavedAt: snap.SavedAt}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("saving snapshot row: %w", err)
	}
	return nil
}

func (s *Store) Load() (store.Snapshot, error) {
	var row snapshotRow
	if err := s.db.First(&row, snapshotRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Snapshot{}, store.ErrNotFound
		}
		return store.Snapshot{}, fmt.Errorf("loading snapshot row: %w", err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(row.Payload, &snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return snap, nil
}

func (s *Store) AppendEvent(e store.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	row := eventRow{ID: e.ID, At: e.At, Type: e.Type, Context: e.Context}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("appending event row: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrapping sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing postgres connection: %w", err)
	}
	return nil
}
