package store

import (
	"context"

	"messaging-service/internal/model"

	"gorm.io/gorm"
)

// AppointmentStore reads appointments for reminder scheduling.
type AppointmentStore struct {
	db *gorm.DB
}

// NewAppointmentStore creates a new appointment store
func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

// Create persists a new appointment
func (s *AppointmentStore) Create(ctx context.Context, appt *model.Appointment) error {
	if err := appt.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(appt).Error
}

// FindByID fetches an appointment owned by the given tenant
func (s *AppointmentStore) FindByID(ctx context.Context, tenantID, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// AllScheduled returns every scheduled appointment across all tenants with
// its tenant preloaded. This is the explicit cross-tenant escape hatch for
// the background reminder scanner; nothing else may iterate tenants.
func (s *AppointmentStore) AllScheduled(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Tenant").
		Where("status = ?", model.AppointmentScheduled).
		Find(&appts).Error
	return appts, err
}

// CountByTenant returns the number of appointments owned by a tenant
func (s *AppointmentStore) CountByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
