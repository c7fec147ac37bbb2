package store

import (
	"context"
	"errors"

	"messaging-service/internal/model"

	"gorm.io/gorm"
)

// ErrMissingTenantName is returned when a tenant is created without a name
var ErrMissingTenantName = errors.New("tenant name is required")

// TenantStore persists tenants.
type TenantStore struct {
	db *gorm.DB
}

// NewTenantStore creates a new tenant store
func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

// Create persists a new tenant
func (s *TenantStore) Create(ctx context.Context, tenant *model.Tenant) error {
	if tenant.Name == "" {
		return ErrMissingTenantName
	}
	return s.db.WithContext(ctx).Create(tenant).Error
}

// FindByID fetches a tenant by ID
func (s *TenantStore) FindByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// UpdateSettings updates a tenant's timezone and reminder lead time
func (s *TenantStore) UpdateSettings(ctx context.Context, tenant *model.Tenant) error {
	return s.db.WithContext(ctx).Save(tenant).Error
}
