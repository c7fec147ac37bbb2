package store

import (
	"context"
	"errors"

	"messaging-service/internal/consent"
	"messaging-service/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrMissingName is returned when a customer is created without a name
	ErrMissingName = errors.New("first name and last name are required")
	// ErrMissingPhone is returned when a customer is created without a phone number
	ErrMissingPhone = errors.New("phone number is required")
)

// CustomerStore persists customers. Every read takes an explicit tenant ID;
// the single unscoped lookup is FindByPhoneUnscoped, used by the inbound
// webhook before a tenant is known.
type CustomerStore struct {
	db     *gorm.DB
	ledger *consent.Ledger
}

// NewCustomerStore creates a new customer store
func NewCustomerStore(db *gorm.DB, ledger *consent.Ledger) *CustomerStore {
	return &CustomerStore{db: db, ledger: ledger}
}

// Create persists a new customer and, when a phone number is present,
// appends the initial opt-in consent log entry in the same transaction.
func (s *CustomerStore) Create(ctx context.Context, customer *model.Customer) error {
	if customer.FirstName == "" || customer.LastName == "" {
		return ErrMissingName
	}
	if customer.Phone == "" {
		return ErrMissingPhone
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(customer).Error; err != nil {
			return err
		}
		return s.ledger.InitialOptInLog(tx, customer)
	})
}

// FindByID fetches a customer owned by the given tenant. A customer
// belonging to another tenant is indistinguishable from a missing one.
func (s *CustomerStore) FindByID(ctx context.Context, tenantID, id uint) (*model.Customer, error) {
	var customer model.Customer
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByPhoneUnscoped resolves a customer by phone number across all
// tenants. Callers must immediately re-derive the tenant from the result
// before any further write.
func (s *CustomerStore) FindByPhoneUnscoped(ctx context.Context, phone string) (*model.Customer, error) {
	var customer model.Customer
	err := s.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CountByTenant returns the number of customers owned by a tenant
func (s *CustomerStore) CountByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
