package negotiation

import (
	"context"

	"install-schedule-backend/internal/model"
	"install-schedule-backend/internal/notification"
	"install-schedule-backend/internal/store"
)

// Service is the negotiation state machine: it validates candidate proposals,
// applies the allowed transitions through the store, and emits an event to the
// dispatcher after every successful mutation.
type Service struct {
	store      store.Store
	validator  *Validator
	dispatcher notification.Dispatcher
}

// NewService creates a negotiation service.
func NewService(s store.Store, v *Validator, d notification.Dispatcher) *Service {
	return &Service{store: s, validator: v, dispatcher: d}
}

// Submit validates the candidate terms and records a new pending proposal.
// Older pending proposals are left untouched: supersession is a read-side
// "most recent wins" derivation, never a write-time cascade, so no history is
// silently destroyed.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*model.ScheduleProposal, error) {
	proposal, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(notification.Event{
		BookingID:  proposal.BookingID,
		ProposalID: proposal.ID,
		Type:       notification.EventSubmitted,
		Recipient:  proposal.ProposedBy.Other(),
	})
	return proposal, nil
}

// Respond resolves a pending proposal. Declining requires a reason; accepting
// does not. The proposer is notified of the outcome.
func (s *Service) Respond(ctx context.Context, proposalID int64, responder model.Role, decision string, message string) (*model.ScheduleProposal, error) {
	if !responder.Valid() {
		return nil, &store.ValidationError{Field: "role", Reason: "must be customer or installer"}
	}

	var status model.ProposalStatus
	var eventType notification.EventType
	switch decision {
	case "accept":
		status = model.ProposalAccepted
		eventType = notification.EventAccepted
	case "decline":
		if message == "" {
			return nil, &store.ValidationError{Field: "message", Reason: "declining a proposal requires a reason"}
		}
		status = model.ProposalDeclined
		eventType = notification.EventDeclined
	default:
		return nil, &store.ValidationError{Field: "decision", Reason: "must be accept or decline"}
	}

	proposal, err := s.store.RespondToProposal(ctx, proposalID, status, message)
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(notification.Event{
		BookingID:  proposal.BookingID,
		ProposalID: proposal.ID,
		Type:       eventType,
		Recipient:  proposal.ProposedBy,
	})
	return proposal, nil
}

// Delete hard-removes a proposal unless it is the protected latest entry of
// its booking's history, returning the withdrawn record. The counterparty is
// told the proposal was withdrawn.
func (s *Service) Delete(ctx context.Context, proposalID int64, requester model.Role) (*model.ScheduleProposal, error) {
	if !requester.Valid() {
		return nil, &store.ValidationError{Field: "role", Reason: "must be customer or installer"}
	}
	proposal, err := s.store.DeleteProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(notification.Event{
		BookingID:  proposal.BookingID,
		ProposalID: proposal.ID,
		Type:       notification.EventDeleted,
		Recipient:  requester.Other(),
	})
	return proposal, nil
}

// History returns all proposals for a booking, most recent first. A booking
// with no proposals yields an empty list, not an error.
func (s *Service) History(ctx context.Context, bookingID int64) ([]model.ScheduleProposal, error) {
	return s.store.ProposalsByBooking(ctx, bookingID)
}

// Active returns the proposal most relevant for display, or nil.
func (s *Service) Active(ctx context.Context, bookingID int64) (*model.ScheduleProposal, error) {
	history, err := s.store.ProposalsByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return ActiveProposal(history), nil
}

// BookingSummary is the read-model for a booking's scheduling situation.
type BookingSummary struct {
	Booking   *model.Booking          `json:"booking"`
	State     BookingState            `json:"state"`
	Confirmed *model.ScheduleProposal `json:"confirmedSchedule,omitempty"`
}

// Summary derives the booking-level state relative to the asking role and
// reports the confirmed schedule, if one exists.
func (s *Service) Summary(ctx context.Context, bookingID int64, role model.Role) (*BookingSummary, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ProposalsByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &BookingSummary{
		Booking:   booking,
		State:     StateFor(history, role),
		Confirmed: ConfirmedSchedule(history),
	}, nil
}
