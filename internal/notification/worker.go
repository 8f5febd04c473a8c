package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"install-schedule-backend/internal/model"
)

// EventType classifies a negotiation state change.
type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventAccepted  EventType = "accepted"
	EventDeclined  EventType = "declined"
	EventDeleted   EventType = "deleted"
)

// Event describes a negotiation state change and which side should hear about it.
type Event struct {
	BookingID  int64
	ProposalID int64
	Type       EventType
	Recipient  model.Role
}

// Dispatcher is the seam between the negotiation service and outbound delivery.
type Dispatcher interface {
	Dispatch(evt Event)
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering negotiation events as web
// push notifications to the counterparty of each booking.
type WorkerPool struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size), // Buffered channel
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case evt := <-wp.jobs:
			log.Printf("Worker %d processing %s event for booking %d", id, evt.Type, evt.BookingID)
			wp.sendNotificationsForEvent(ctx, evt)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event for delivery.
func (wp *WorkerPool) Dispatch(evt Event) {
	wp.jobs <- evt
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// sendNotificationsForEvent fetches the recipient side's subscriptions for the
// booking and pushes the event to each endpoint.
func (wp *WorkerPool) sendNotificationsForEvent(ctx context.Context, evt Event) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_booking_mapping sbm ON sbm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sbm.booking_id = ? AND push_subscriptions.role = ?", evt.BookingID, evt.Recipient).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for booking %d: %v", evt.BookingID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for booking %d", len(subscriptions), evt.BookingID)

	var booking model.Booking
	bookingLabel := fmt.Sprintf("#%d", evt.BookingID)
	if err := wp.db.WithContext(ctx).
		Select("reference").
		First(&booking, evt.BookingID).Error; err != nil {
		log.Printf("Error fetching booking %d: %v", evt.BookingID, err)
	} else if booking.Reference != "" {
		bookingLabel = booking.Reference
	}

	message := eventMessage(evt.Type, bookingLabel)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func eventMessage(t EventType, bookingLabel string) string {
	switch t {
	case EventSubmitted:
		return fmt.Sprintf("New installation date proposed for booking %s", bookingLabel)
	case EventAccepted:
		return fmt.Sprintf("Installation date for booking %s has been accepted", bookingLabel)
	case EventDeclined:
		return fmt.Sprintf("Installation date for booking %s has been declined", bookingLabel)
	case EventDeleted:
		return fmt.Sprintf("A schedule proposal for booking %s was withdrawn", bookingLabel)
	}
	return fmt.Sprintf("Booking %s has been updated", bookingLabel)
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
