package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
)

// statusID is the fixed primary key of the singleton row.
const statusID = 1

// StatusStore reads and writes the singleton advisory status row.
type StatusStore struct {
	db *gorm.DB
}

// NewStatusStore creates a status store over an open database.
func NewStatusStore(db *gorm.DB) *StatusStore {
	return &StatusStore{db: db}
}

// Ensure creates the singleton row with the empty sentinel status if it
// does not exist yet. Safe to call on every startup.
func (s *StatusStore) Ensure(ctx context.Context) error {
	row := statusRow{ID: statusID}
	if err := s.db.WithContext(ctx).FirstOrCreate(&row, statusRow{ID: statusID}).Error; err != nil {
		return fmt.Errorf("ensure status row: %w", err)
	}
	return nil
}

// Get returns the current status. The read is always fresh; callers rely
// on this to tolerate concurrent trigger invocations.
func (s *StatusStore) Get(ctx context.Context) (domain.Status, error) {
	var row statusRow
	if err := s.db.WithContext(ctx).First(&row, statusID).Error; err != nil {
		return domain.Status{}, fmt.Errorf("load status row: %w", err)
	}
	return domain.Status{Code: row.Status, Updated: row.Updated}, nil
}

// CompareAndSwap atomically replaces the stored status only if it still
// equals old. Returns false when a concurrent writer got there first,
// which removes the losing trigger from firing a duplicate fanout.
func (s *StatusStore) CompareAndSwap(ctx context.Context, old, code string, ts time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&statusRow{}).
		Where("id = ? AND status = ?", statusID, old).
		Updates(map[string]any{"status": code, "updated": ts})
	if res.Error != nil {
		return false, fmt.Errorf("update status row: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
