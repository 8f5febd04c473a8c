package model

import "time"

// PushSubscription holds a browser push subscription for one party of one or
// more bookings. Role decides which side of a negotiation the endpoint belongs
// to, so the dispatcher can address the counterparty of a state change.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Role      Role      `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Bookings []*Booking `gorm:"many2many:subscription_booking_mapping;"`
}
