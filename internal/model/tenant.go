package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultReminderLeadHours is used when a tenant has not configured a
// reminder lead time of its own.
const DefaultReminderLeadHours = 24

// Tenant represents a business account. Every customer, message and
// appointment row is owned by exactly one tenant.
type Tenant struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"type:varchar(100);not null"`
	Timezone          string         `json:"timezone" gorm:"type:varchar(64);not null;default:'UTC'"`
	ReminderLeadHours *int           `json:"reminder_lead_hours"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// LeadHours returns the configured reminder lead time, falling back to the
// default when unset or non-positive.
func (t *Tenant) LeadHours() int {
	if t.ReminderLeadHours != nil && *t.ReminderLeadHours > 0 {
		return *t.ReminderLeadHours
	}
	return DefaultReminderLeadHours
}
