package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrms/internal/domain"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) Audit() *AuditStore { return &AuditStore{db: s.DB} }

// Append records action with metadata marshalled as JSON.
func (a *AuditStore) Append(ctx context.Context, userID *domain.UserID, action string, metadata any, ip, ua string) error {
	var raw []byte
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		raw = b
	}
	row := &domain.AuditLog{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Metadata:  raw,
		IP:        ip,
		UserAgent: ua,
		CreatedAt: time.Now().UTC(),
	}
	return translate(a.db.WithContext(ctx).Create(row).Error)
}

func (a *AuditStore) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}
