package negotiation

import (
	"context"
	"fmt"
	"time"

	"install-schedule-backend/internal/model"
	"install-schedule-backend/internal/store"
	"install-schedule-backend/internal/timeslot"
)

const dateLayout = "2006-01-02"

// BookingLookup confirms that a booking exists. Satisfied by store.Store.
type BookingLookup interface {
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
}

// SubmitRequest carries the raw terms of a candidate proposal.
type SubmitRequest struct {
	BookingID    int64
	Role         model.Role
	ProposedDate string // YYYY-MM-DD
	TimeSlot     string
	StartTime    string
	EndTime      string
	Message      string
}

// Validator enforces field and temporal constraints on candidate proposals.
type Validator struct {
	bookings    BookingLookup
	loc         *time.Location
	minLeadDays int
	now         func() time.Time
}

// NewValidator creates a validator. Dates are interpreted in the configured
// timezone so "tomorrow" means tomorrow where the installation happens.
func NewValidator(bookings BookingLookup, timezone string, minLeadDays int) (*Validator, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	if minLeadDays < 1 {
		minLeadDays = 1
	}
	return &Validator{
		bookings:    bookings,
		loc:         loc,
		minLeadDays: minLeadDays,
		now:         time.Now,
	}, nil
}

// Validate checks a candidate proposal and, on success, returns the proposal
// record ready for persistence. Nothing is persisted on failure.
func (v *Validator) Validate(ctx context.Context, req SubmitRequest) (*model.ScheduleProposal, error) {
	if !req.Role.Valid() {
		return nil, &store.ValidationError{Field: "role", Reason: "must be customer or installer"}
	}

	date, err := time.ParseInLocation(dateLayout, req.ProposedDate, v.loc)
	if err != nil {
		return nil, &store.ValidationError{Field: "proposedDate", Reason: "expected YYYY-MM-DD"}
	}

	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	earliest := today.AddDate(0, 0, v.minLeadDays)
	if date.Before(earliest) {
		return nil, &store.ValidationError{
			Field:  "proposedDate",
			Reason: fmt.Sprintf("must be at least %d day(s) in the future", v.minLeadDays),
		}
	}

	proposal := &model.ScheduleProposal{
		BookingID:    req.BookingID,
		ProposedDate: date,
		Message:      req.Message,
		ProposedBy:   req.Role,
	}

	hasSlot := req.TimeSlot != ""
	hasRange := req.StartTime != "" || req.EndTime != ""
	switch {
	case hasSlot && hasRange:
		return nil, &store.ValidationError{Field: "timeSlot", Reason: "provide a time slot or an explicit time range, not both"}
	case hasSlot:
		slot, err := timeslot.ParseSlot(req.TimeSlot)
		if err != nil {
			return nil, &store.ValidationError{Field: "timeSlot", Reason: err.Error()}
		}
		s := string(slot)
		proposal.TimeSlot = &s
	case hasRange:
		r, err := timeslot.ParseRange(req.StartTime, req.EndTime)
		if err != nil {
			return nil, &store.ValidationError{Field: "startTime", Reason: err.Error()}
		}
		proposal.StartTime = &r.Start
		proposal.EndTime = &r.End
	}

	booking, err := v.bookings.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, &store.ValidationError{Field: "bookingId", Reason: "booking is cancelled"}
	}

	return proposal, nil
}
