// Package store persists the advisory status singleton and the subscriber
// set. Each mutation is its own short transaction; nothing here spans
// multiple rows.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/couchcryptid/french-toast-alert-service/internal/config"
)

// statusRow is the singleton advisory status record. Exactly one row with
// id 1 ever exists.
type statusRow struct {
	ID      uint   `gorm:"primaryKey"`
	Status  string `gorm:"size:16"`
	Updated time.Time
}

func (statusRow) TableName() string { return "french_toast_status" }

// subscriberRow stores one Slack webhook endpoint. The URL is only ever
// stored as a Fernet token.
type subscriberRow struct {
	ID           uint   `gorm:"primaryKey"`
	TeamID       string `gorm:"size:16;index:idx_team_channel"`
	ChannelID    string `gorm:"size:16;index:idx_team_channel"`
	EncryptedURL []byte
	Added        time.Time `gorm:"autoCreateTime"`
	LastNotified *time.Time
	Inactive     bool `gorm:"default:false"`
}

func (subscriberRow) TableName() string { return "french_toast_teams" }

// Open connects to postgres and migrates the two tables.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for both tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&statusRow{}, &subscriberRow{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
