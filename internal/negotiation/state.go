package negotiation

import "install-schedule-backend/internal/model"

// BookingState is the derived scheduling state of a booking. It is computed on
// read and never stored.
type BookingState string

const (
	// StateUnscheduled means no proposal exists, or nothing actionable or
	// accepted sits at the head of the history.
	StateUnscheduled BookingState = "unscheduled"
	// StatePendingResponse means the most recent proposal is pending and was
	// authored by the other party, so the asking role owes a response.
	StatePendingResponse BookingState = "pending_response"
	// StateConfirmed means the most recent proposal is accepted.
	StateConfirmed BookingState = "confirmed"
)

// History is assumed ordered most recent first (created_at DESC, id DESC),
// which is how the store returns it.

// ActiveProposal returns the proposal most relevant for display: the latest
// accepted one if it is also the most recent overall, otherwise the latest
// pending one, otherwise nil.
func ActiveProposal(history []model.ScheduleProposal) *model.ScheduleProposal {
	if len(history) == 0 {
		return nil
	}
	if history[0].Status == model.ProposalAccepted {
		return &history[0]
	}
	for i := range history {
		if history[i].Status == model.ProposalPending {
			return &history[i]
		}
	}
	return nil
}

// ConfirmedSchedule returns the most recently created accepted proposal, or
// nil if the booking has never had one. A newer pending counter-proposal does
// not erase it; the historical confirmation stays visible.
func ConfirmedSchedule(history []model.ScheduleProposal) *model.ScheduleProposal {
	for i := range history {
		if history[i].Status == model.ProposalAccepted {
			return &history[i]
		}
	}
	return nil
}

// StateFor derives the booking-level state relative to the asking role. A
// booking whose newest entry is the asker's own pending proposal reads as
// unscheduled for the asker and pending_response for the counterparty.
func StateFor(history []model.ScheduleProposal, role model.Role) BookingState {
	if len(history) == 0 {
		return StateUnscheduled
	}
	latest := &history[0]
	switch latest.Status {
	case model.ProposalAccepted:
		return StateConfirmed
	case model.ProposalPending:
		if latest.ProposedBy != role {
			return StatePendingResponse
		}
	}
	return StateUnscheduled
}
