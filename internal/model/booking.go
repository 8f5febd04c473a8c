package model

import "time"

// BookingStatus is the lifecycle state of a booking as reported by the platform.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is the local copy of a platform booking that negotiations attach to.
type Booking struct {
	ID           int64         `gorm:"primaryKey" json:"id"`
	Reference    string        `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	CustomerName string        `gorm:"size:256" json:"customerName"`
	Postcode     string        `gorm:"size:16" json:"postcode"`
	ServiceType  string        `gorm:"size:64" json:"serviceType"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updatedAt"`

	// Associations
	Proposals []ScheduleProposal `gorm:"foreignKey:BookingID" json:"-"`
}
