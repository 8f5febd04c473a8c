package negotiation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"install-schedule-backend/internal/model"
	"install-schedule-backend/internal/notification"
	"install-schedule-backend/internal/store"
)

// recordingDispatcher captures events instead of delivering them.
type recordingDispatcher struct {
	events []notification.Event
}

func (d *recordingDispatcher) Dispatch(evt notification.Event) {
	d.events = append(d.events, evt)
}

func newTestService(t *testing.T) (*Service, *recordingDispatcher, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.Booking{}, &model.ScheduleProposal{}, &model.PushSubscription{}))

	appStore := store.NewGormStore(db)
	validator, err := NewValidator(appStore, "UTC", 1)
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	return NewService(appStore, validator, dispatcher), dispatcher, db
}

func seedBooking(t *testing.T, db *gorm.DB, id int64, status model.BookingStatus) {
	booking := model.Booking{ID: id, Reference: time.Now().Format("BK-150405.000000000"), Status: status}
	require.NoError(t, db.Create(&booking).Error)
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestServiceSubmit(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	ctx := context.Background()
	seedBooking(t, db, 7, model.BookingStatusPending)

	proposal, err := svc.Submit(ctx, SubmitRequest{
		BookingID:    7,
		Role:         model.RoleInstaller,
		ProposedDate: futureDate(2),
		TimeSlot:     "morning",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProposalPending, proposal.Status)
	assert.Equal(t, model.RoleInstaller, proposal.ProposedBy)
	require.NotNil(t, proposal.TimeSlot)
	assert.Equal(t, "morning", *proposal.TimeSlot)

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, proposal.ID, history[0].ID)

	// The customer hears about the installer's proposal.
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, notification.EventSubmitted, dispatcher.events[0].Type)
	assert.Equal(t, model.RoleCustomer, dispatcher.events[0].Recipient)
	assert.Equal(t, int64(7), dispatcher.events[0].BookingID)
}

func TestServiceSubmitRejectsInvalid(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	ctx := context.Background()
	seedBooking(t, db, 7, model.BookingStatusPending)

	_, err := svc.Submit(ctx, SubmitRequest{
		BookingID:    7,
		Role:         model.RoleInstaller,
		ProposedDate: time.Now().UTC().Format("2006-01-02"), // today
	})
	var validationErr *store.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, history, "no partial proposal may be persisted")
	assert.Empty(t, dispatcher.events)
}

func TestServiceRespond(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	ctx := context.Background()
	seedBooking(t, db, 7, model.BookingStatusPending)

	proposal, err := svc.Submit(ctx, SubmitRequest{
		BookingID: 7, Role: model.RoleInstaller, ProposedDate: futureDate(2),
	})
	require.NoError(t, err)

	t.Run("Declining without a reason is rejected", func(t *testing.T) {
		_, err := svc.Respond(ctx, proposal.ID, model.RoleCustomer, "decline", "")
		var validationErr *store.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "message", validationErr.Field)

		// The proposal is untouched.
		var stored model.ScheduleProposal
		require.NoError(t, db.First(&stored, proposal.ID).Error)
		assert.Equal(t, model.ProposalPending, stored.Status)
	})

	t.Run("Unknown decision is rejected", func(t *testing.T) {
		_, err := svc.Respond(ctx, proposal.ID, model.RoleCustomer, "maybe", "")
		var validationErr *store.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Declining with a reason resolves the proposal", func(t *testing.T) {
		updated, err := svc.Respond(ctx, proposal.ID, model.RoleCustomer, "decline", "not available that day")
		require.NoError(t, err)
		assert.Equal(t, model.ProposalDeclined, updated.Status)
		assert.Equal(t, "not available that day", updated.ResponseMessage)

		// The proposer is notified of the decline.
		last := dispatcher.events[len(dispatcher.events)-1]
		assert.Equal(t, notification.EventDeclined, last.Type)
		assert.Equal(t, model.RoleInstaller, last.Recipient)
	})

	t.Run("Re-responding to a resolved proposal conflicts", func(t *testing.T) {
		_, err := svc.Respond(ctx, proposal.ID, model.RoleCustomer, "accept", "")
		var stateErr *store.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, model.ProposalDeclined, stateErr.Current)
	})
}

func TestServiceAcceptThenReschedule(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	ctx := context.Background()
	seedBooking(t, db, 7, model.BookingStatusPending)

	// Installer proposes, customer accepts.
	first, err := svc.Submit(ctx, SubmitRequest{
		BookingID: 7, Role: model.RoleInstaller, ProposedDate: futureDate(2), TimeSlot: "morning",
	})
	require.NoError(t, err)
	accepted, err := svc.Respond(ctx, first.ID, model.RoleCustomer, "accept", "")
	require.NoError(t, err)
	assert.Equal(t, model.ProposalAccepted, accepted.Status)

	active, err := svc.Active(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	summary, err := svc.Summary(ctx, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, summary.State)
	require.NotNil(t, summary.Confirmed)
	assert.Equal(t, first.ID, summary.Confirmed.ID)

	// Installer proposes a reschedule: the new pending proposal becomes the
	// active negotiation, the historical acceptance stays visible.
	second, err := svc.Submit(ctx, SubmitRequest{
		BookingID: 7, Role: model.RoleInstaller, ProposedDate: futureDate(5), TimeSlot: "afternoon",
	})
	require.NoError(t, err)

	active, err = svc.Active(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	summary, err = svc.Summary(ctx, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, StatePendingResponse, summary.State)
	require.NotNil(t, summary.Confirmed)
	assert.Equal(t, first.ID, summary.Confirmed.ID, "the confirmed record remains visible")

	// Events: submitted, accepted, submitted.
	require.Len(t, dispatcher.events, 3)
	assert.Equal(t, notification.EventAccepted, dispatcher.events[1].Type)
	assert.Equal(t, model.RoleInstaller, dispatcher.events[1].Recipient)
}

func TestServiceDelete(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	ctx := context.Background()
	seedBooking(t, db, 7, model.BookingStatusPending)

	first, err := svc.Submit(ctx, SubmitRequest{
		BookingID: 7, Role: model.RoleInstaller, ProposedDate: futureDate(2),
	})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, SubmitRequest{
		BookingID: 7, Role: model.RoleCustomer, ProposedDate: futureDate(3),
	})
	require.NoError(t, err)

	t.Run("Latest entry is protected", func(t *testing.T) {
		_, err := svc.Delete(ctx, second.ID, model.RoleCustomer)
		var stateErr *store.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("Older entry is deletable and the counterparty is told", func(t *testing.T) {
		deleted, err := svc.Delete(ctx, first.ID, model.RoleInstaller)
		require.NoError(t, err)
		assert.Equal(t, first.ID, deleted.ID)

		history, err := svc.History(ctx, 7)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, second.ID, history[0].ID)

		last := dispatcher.events[len(dispatcher.events)-1]
		assert.Equal(t, notification.EventDeleted, last.Type)
		assert.Equal(t, model.RoleCustomer, last.Recipient)
	})
}

func TestServiceSummaryUnknownBooking(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Summary(context.Background(), 999, model.RoleCustomer)
	var notFoundErr *store.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
