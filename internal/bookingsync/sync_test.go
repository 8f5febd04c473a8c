package bookingsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"install-schedule-backend/config"
	"install-schedule-backend/internal/model"
	"install-schedule-backend/internal/store"
)

// setupSync wires a poller against an in-memory database and a mock platform
// server whose responses the test controls per cycle.
func setupSync(t *testing.T) (*gorm.DB, *Service, func([][]store.PlatformBooking)) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, testDB.AutoMigrate(&model.Booking{}, &model.ScheduleProposal{}, &model.PushSubscription{}))

	var mockResponses [][]store.PlatformBooking
	var currentResponseIndex int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []store.PlatformBooking
		if currentResponseIndex < len(mockResponses) {
			items = mockResponses[currentResponseIndex]
			currentResponseIndex++
		}

		var response ApiResponse
		response.Code = 0
		response.Data.Page = 1
		response.Data.PageSize = 10
		response.Data.Total = len(items)
		response.Data.Items = items

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Sync.Enabled = true
	cfg.Sync.Request.URL = server.URL
	cfg.Sync.Request.PageSize = 10

	svc := NewService(cfg, store.NewGormStore(testDB))

	setResponses := func(responses [][]store.PlatformBooking) {
		mockResponses = responses
		currentResponseIndex = 0
	}
	return testDB, svc, setResponses
}

func TestSyncReconcilesBookings(t *testing.T) {
	testDB, svc, setResponses := setupSync(t)

	setResponses([][]store.PlatformBooking{
		{
			{ID: 7, Reference: "BK-0007", CustomerName: "A. Jones", Postcode: "SW1A 1AA", ServiceType: "wall-mount", Status: "confirmed"},
			{ID: 8, Reference: "BK-0008", CustomerName: "B. Patel", Postcode: "M1 2AB", ServiceType: "wall-mount", Status: "new"},
		},
		{
			// Next cycle: booking 7 was cancelled on the platform.
			{ID: 7, Reference: "BK-0007", CustomerName: "A. Jones", Postcode: "SW1A 1AA", ServiceType: "wall-mount", Status: "cancelled"},
		},
	})

	// Cycle 1: both bookings land locally.
	svc.SyncOnce(context.Background())

	var booking7 model.Booking
	require.NoError(t, testDB.First(&booking7, 7).Error)
	assert.Equal(t, "BK-0007", booking7.Reference)
	assert.Equal(t, model.BookingStatusConfirmed, booking7.Status)

	var booking8 model.Booking
	require.NoError(t, testDB.First(&booking8, 8).Error)
	assert.Equal(t, model.BookingStatusPending, booking8.Status, "unrecognized platform status maps to pending")

	// Cycle 2: the cancellation is reflected in place.
	svc.SyncOnce(context.Background())

	var booking7After model.Booking
	require.NoError(t, testDB.First(&booking7After, 7).Error)
	assert.Equal(t, model.BookingStatusCancelled, booking7After.Status)

	var count int64
	testDB.Model(&model.Booking{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSyncAbortsOnFetchError(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, testDB.AutoMigrate(&model.Booking{}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Sync.Request.URL = server.URL
	cfg.Sync.Request.PageSize = 10

	svc := NewService(cfg, store.NewGormStore(testDB))
	svc.SyncOnce(context.Background())

	var count int64
	testDB.Model(&model.Booking{}).Count(&count)
	assert.Equal(t, int64(0), count, "a failed fetch must not touch local state")
}
