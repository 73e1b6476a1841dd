package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
)

// SubscriberStore persists registered webhook endpoints.
type SubscriberStore struct {
	db     *gorm.DB
	cipher *urlCipher
}

// NewSubscriberStore creates a subscriber store. tokenKey is the base64
// Fernet key guarding webhook URLs at rest.
func NewSubscriberStore(db *gorm.DB, tokenKey string) (*SubscriberStore, error) {
	cipher, err := newURLCipher(tokenKey)
	if err != nil {
		return nil, err
	}
	return &SubscriberStore{db: db, cipher: cipher}, nil
}

// Upsert creates the subscriber for reg's team+channel, or refreshes its
// URL and reactivates it if it already exists. This is the registration
// path; re-registering an endpoint that went inactive brings it back.
func (s *SubscriberStore) Upsert(ctx context.Context, reg domain.Registration) (domain.Subscriber, error) {
	encrypted, err := s.cipher.encrypt(reg.WebhookURL)
	if err != nil {
		return domain.Subscriber{}, err
	}

	var row subscriberRow
	err = s.db.WithContext(ctx).
		Where("team_id = ? AND channel_id = ?", reg.TeamID, reg.ChannelID).
		First(&row).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = subscriberRow{
			TeamID:       reg.TeamID,
			ChannelID:    reg.ChannelID,
			EncryptedURL: encrypted,
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return domain.Subscriber{}, fmt.Errorf("create subscriber: %w", err)
		}
	case err != nil:
		return domain.Subscriber{}, fmt.Errorf("look up subscriber: %w", err)
	default:
		updates := map[string]any{"encrypted_url": encrypted, "inactive": false}
		if err := s.db.WithContext(ctx).Model(&row).Updates(updates).Error; err != nil {
			return domain.Subscriber{}, fmt.Errorf("update subscriber: %w", err)
		}
		row.EncryptedURL = encrypted
		row.Inactive = false
	}

	return s.toDomain(row)
}

// ListDue returns every subscriber that qualifies for a fanout of the
// status generation ts: active, and (unless force) not already notified
// of exactly that generation.
func (s *SubscriberStore) ListDue(ctx context.Context, ts time.Time, force bool) ([]domain.Subscriber, error) {
	q := s.db.WithContext(ctx).Where("inactive = ?", false)
	if !force {
		q = q.Where("last_notified IS NULL OR last_notified <> ?", ts)
	}

	var rows []subscriberRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	subs := make([]domain.Subscriber, 0, len(rows))
	for _, row := range rows {
		sub, err := s.toDomain(row)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// MarkNotified records that the subscriber received the status generation
// identified by ts. The stored value is the status's updated timestamp,
// not the delivery time.
func (s *SubscriberStore) MarkNotified(ctx context.Context, id uint, ts time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&subscriberRow{}).
		Where("id = ?", id).
		Update("last_notified", ts).Error
	if err != nil {
		return fmt.Errorf("mark subscriber notified: %w", err)
	}
	return nil
}

// Deactivate excludes the subscriber from future non-forced fanouts. The
// row stays addressable so re-registration can reactivate it.
func (s *SubscriberStore) Deactivate(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).
		Model(&subscriberRow{}).
		Where("id = ?", id).
		Update("inactive", true).Error
	if err != nil {
		return fmt.Errorf("deactivate subscriber: %w", err)
	}
	return nil
}

func (s *SubscriberStore) toDomain(row subscriberRow) (domain.Subscriber, error) {
	url, err := s.cipher.decrypt(row.EncryptedURL)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("subscriber %d: %w", row.ID, err)
	}
	return domain.Subscriber{
		ID:           row.ID,
		TeamID:       row.TeamID,
		ChannelID:    row.ChannelID,
		WebhookURL:   url,
		Added:        row.Added,
		LastNotified: row.LastNotified,
		Inactive:     row.Inactive,
	}, nil
}
