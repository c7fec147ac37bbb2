package store

import (
	"context"

	"messaging-service/internal/model"

	"gorm.io/gorm"
)

// SenderNumberStore persists per-tenant dedicated carrier numbers.
type SenderNumberStore struct {
	db *gorm.DB
}

// NewSenderNumberStore creates a new sender number store
func NewSenderNumberStore(db *gorm.DB) *SenderNumberStore {
	return &SenderNumberStore{db: db}
}

// Create registers a new dedicated number for a tenant, starting in the
// pending state.
func (s *SenderNumberStore) Create(ctx context.Context, number *model.SenderNumber) error {
	return s.db.WithContext(ctx).Create(number).Error
}

// ActiveForTenant returns the tenant's active dedicated number, or
// gorm.ErrRecordNotFound when the tenant has none.
func (s *SenderNumberStore) ActiveForTenant(ctx context.Context, tenantID uint) (*model.SenderNumber, error) {
	var number model.SenderNumber
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, model.SenderNumberActive).
		First(&number).Error
	if err != nil {
		return nil, err
	}
	return &number, nil
}

// Approve moves a pending number to approved
func (s *SenderNumberStore) Approve(ctx context.Context, tenantID, id uint) error {
	return s.updateStatus(ctx, tenantID, id, model.SenderNumberApproved)
}

// Activate moves an approved number to active
func (s *SenderNumberStore) Activate(ctx context.Context, tenantID, id uint) error {
	return s.updateStatus(ctx, tenantID, id, model.SenderNumberActive)
}

func (s *SenderNumberStore) updateStatus(ctx context.Context, tenantID, id uint, status model.SenderNumberStatus) error {
	result := s.db.WithContext(ctx).
		Model(&model.SenderNumber{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
