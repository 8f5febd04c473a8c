package model

import "time"

// Role identifies which side of a booking authored a message.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleInstaller Role = "installer"
)

// Valid reports whether r is one of the two recognized roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleInstaller
}

// Other returns the counterparty role.
func (r Role) Other() Role {
	if r == RoleCustomer {
		return RoleInstaller
	}
	return RoleCustomer
}

// ProposalStatus is the per-proposal state. Pending is the only non-terminal state.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalDeclined ProposalStatus = "declined"
)

// ScheduleProposal is one offered installation date from one party to the other.
// Terms are immutable after creation; changing them requires a new proposal.
// IDs are assigned monotonically, so (CreatedAt, ID) gives insertion order even
// when timestamps collide.
type ScheduleProposal struct {
	ID              int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID       int64          `gorm:"index:idx_proposal_booking_created;not null" json:"bookingId"`
	ProposedDate    time.Time      `gorm:"not null" json:"proposedDate"`
	TimeSlot        *string        `gorm:"size:16" json:"timeSlot,omitempty"`
	StartTime       *string        `gorm:"size:8" json:"startTime,omitempty"`
	EndTime         *string        `gorm:"size:8" json:"endTime,omitempty"`
	Message         string         `gorm:"type:text" json:"message,omitempty"`
	ProposedBy      Role           `gorm:"type:varchar(16);not null" json:"proposedBy"`
	Status          ProposalStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	ResponseMessage string         `gorm:"type:text" json:"responseMessage,omitempty"`
	CreatedAt       time.Time      `gorm:"index:idx_proposal_booking_created;not null" json:"createdAt"`

	// Associations
	Booking Booking `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Resolved reports whether the proposal has reached a terminal status.
func (p *ScheduleProposal) Resolved() bool {
	return p.Status == ProposalAccepted || p.Status == ProposalDeclined
}
