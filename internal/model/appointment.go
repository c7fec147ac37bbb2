package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus is the scheduling lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// ErrEndBeforeStart is returned when an appointment's end time precedes its
// start time.
var ErrEndBeforeStart = errors.New("end time must be after start time")

// Appointment is consumed by the messaging core only to compute reminder
// eligibility; it is owned by the scheduling side of the product.
type Appointment struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	TenantID   uint              `json:"tenant_id" gorm:"index;not null"`
	CustomerID uint              `json:"customer_id" gorm:"index;not null"`
	StartTime  time.Time         `json:"start_time" gorm:"not null"`
	EndTime    time.Time         `json:"end_time" gorm:"not null"`
	Status     AppointmentStatus `json:"status" gorm:"type:varchar(16);not null;default:'scheduled'"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `json:"-" gorm:"index"`

	Customer Customer `json:"-" gorm:"foreignKey:CustomerID"`
	Tenant   Tenant   `json:"-" gorm:"foreignKey:TenantID"`
}

// Validate checks the appointment's time window
func (a *Appointment) Validate() error {
	if !a.StartTime.IsZero() && !a.EndTime.IsZero() && a.EndTime.Before(a.StartTime) {
		return ErrEndBeforeStart
	}
	return nil
}
