package model

import (
	"time"
)

// ConsentEventType is the kind of consent transition a log entry records.
type ConsentEventType string

const (
	ConsentEventOptedIn  ConsentEventType = "opted_in"
	ConsentEventOptedOut ConsentEventType = "opted_out"
)

// ConsentLog is an immutable audit record of one consent transition.
// Rows are append-only: they are never updated or deleted.
type ConsentLog struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	CustomerID  uint             `json:"customer_id" gorm:"index;not null"`
	EventType   ConsentEventType `json:"event_type" gorm:"type:varchar(16);not null"`
	ConsentText string           `json:"consent_text" gorm:"type:text;not null"`
	ConsentedAt time.Time        `json:"consented_at" gorm:"not null"`
	Metadata    string           `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time        `json:"created_at"`

	Customer Customer `json:"-" gorm:"foreignKey:CustomerID"`
}
