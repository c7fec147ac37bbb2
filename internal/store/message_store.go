package store

import (
	"context"
	"errors"

	"messaging-service/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrEmptyBody is returned when a message is created without a body
	ErrEmptyBody = errors.New("message body is required")
	// ErrMissingDirection is returned when a message is created without a direction
	ErrMissingDirection = errors.New("message direction is required")
	// ErrTenantMismatch is returned when a message's tenant does not own its customer
	ErrTenantMismatch = errors.New("message tenant does not match customer tenant")
)

// MessageStore persists messages and their delivery-status transitions.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a new message store
func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Create persists a new message. The message's tenant must own its
// customer; a mismatch is an invariant violation, not a lookup miss.
func (s *MessageStore) Create(ctx context.Context, msg *model.Message) error {
	if msg.Body == "" {
		return ErrEmptyBody
	}
	if msg.Direction == "" {
		return ErrMissingDirection
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ? AND tenant_id = ?", msg.CustomerID, msg.TenantID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTenantMismatch
	}

	return s.db.WithContext(ctx).Create(msg).Error
}

// Update persists status-transition changes to an existing message
func (s *MessageStore) Update(ctx context.Context, msg *model.Message) error {
	return s.db.WithContext(ctx).Save(msg).Error
}

// FindByID fetches a message owned by the given tenant
func (s *MessageStore) FindByID(ctx context.Context, tenantID, id uint) (*model.Message, error) {
	var msg model.Message
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByCarrierSID resolves a message by its carrier-assigned identifier.
// Status callbacks carry no tenant context; the SID is globally unique, so
// the lookup is deliberately unscoped.
func (s *MessageStore) FindByCarrierSID(ctx context.Context, sid string) (*model.Message, error) {
	var msg model.Message
	err := s.db.WithContext(ctx).
		Where("carrier_sid = ?", sid).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByCustomer returns a customer's conversation, oldest first
func (s *MessageStore) ListByCustomer(ctx context.Context, tenantID, customerID uint) ([]model.Message, error) {
	var messages []model.Message
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// CountByTenant returns the number of messages owned by a tenant
func (s *MessageStore) CountByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
