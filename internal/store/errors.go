package store

import (
	"fmt"

	"install-schedule-backend/internal/model"
)

// ValidationError reports malformed or policy-violating input. The caller can
// recover by resubmitting corrected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing booking or proposal.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidStateError reports an operation that is structurally valid but
// conflicts with the current record state, including a lost optimistic-
// concurrency race. Current carries the status observed at conflict time so
// the client can refresh and re-present options.
type InvalidStateError struct {
	Reason  string
	Current model.ProposalStatus
}

func (e *InvalidStateError) Error() string {
	if e.Current != "" {
		return fmt.Sprintf("%s (current status: %s)", e.Reason, e.Current)
	}
	return e.Reason
}
