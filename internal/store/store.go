package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"install-schedule-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateBooking(ctx context.Context, booking *model.Booking) error
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	UpsertBookings(ctx context.Context, items []PlatformBooking, mapStatus func(string) model.BookingStatus) error

	CreateProposal(ctx context.Context, proposal *model.ScheduleProposal) error
	GetProposal(ctx context.Context, id int64) (*model.ScheduleProposal, error)
	RespondToProposal(ctx context.Context, id int64, decision model.ProposalStatus, responseMessage string) (*model.ScheduleProposal, error)
	DeleteProposal(ctx context.Context, id int64) (*model.ScheduleProposal, error)
	ProposalsByBooking(ctx context.Context, bookingID int64) ([]model.ScheduleProposal, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateBooking inserts a locally created booking.
func (s *gormStore) CreateBooking(ctx context.Context, booking *model.Booking) error {
	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetBooking fetches a booking by id.
func (s *gormStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var booking model.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch booking %d: %w", id, err)
	}
	return &booking, nil
}

// UpsertBookings reconciles the local bookings table with a page of platform
// records. The status classifier is injected so the poller owns the mapping
// from platform status strings.
func (s *gormStore) UpsertBookings(ctx context.Context, items []PlatformBooking, mapStatus func(string) model.BookingStatus) error {
	if len(items) == 0 {
		return nil
	}

	bookings := make([]model.Booking, 0, len(items))
	for _, item := range items {
		bookings = append(bookings, model.Booking{
			ID:           item.ID,
			Reference:    item.Reference,
			CustomerName: item.CustomerName,
			Postcode:     item.Postcode,
			ServiceType:  item.ServiceType,
			Status:       mapStatus(item.Status),
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reference", "customer_name", "postcode", "service_type", "status", "updated_at"}),
		}).Create(&bookings).Error; err != nil {
			return fmt.Errorf("batch upsert bookings failed: %w", err)
		}
		return nil
	})
}

// CreateProposal persists a validated proposal in pending status. The id and
// creation timestamp are assigned inside the insert, which is what gives the
// booking's history its total order.
func (s *gormStore) CreateProposal(ctx context.Context, proposal *model.ScheduleProposal) error {
	proposal.Status = model.ProposalPending
	if err := s.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return fmt.Errorf("failed to create proposal for booking %d: %w", proposal.BookingID, err)
	}
	return nil
}

// GetProposal fetches a proposal by id.
func (s *gormStore) GetProposal(ctx context.Context, id int64) (*model.ScheduleProposal, error) {
	var proposal model.ScheduleProposal
	if err := s.db.WithContext(ctx).First(&proposal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "proposal", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch proposal %d: %w", id, err)
	}
	return &proposal, nil
}

// RespondToProposal moves a pending proposal to a terminal status. The status
// check and the update run in one transaction, and the update itself is
// conditional on the row still being pending, so a racing responder loses with
// InvalidStateError instead of overwriting a terminal status.
func (s *gormStore) RespondToProposal(ctx context.Context, id int64, decision model.ProposalStatus, responseMessage string) (*model.ScheduleProposal, error) {
	var proposal model.ScheduleProposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&proposal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "proposal", ID: id}
			}
			return fmt.Errorf("failed to fetch proposal %d: %w", id, err)
		}
		if proposal.Resolved() {
			return &InvalidStateError{Reason: "proposal is already resolved", Current: proposal.Status}
		}

		res := tx.Model(&model.ScheduleProposal{}).
			Where("id = ? AND status = ?", id, model.ProposalPending).
			Updates(map[string]any{"status": decision, "response_message": responseMessage})
		if res.Error != nil {
			return fmt.Errorf("failed to update proposal %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race: re-read for the authoritative status.
			if err := tx.First(&proposal, id).Error; err != nil {
				return &NotFoundError{Resource: "proposal", ID: id}
			}
			return &InvalidStateError{Reason: "proposal was resolved concurrently", Current: proposal.Status}
		}

		proposal.Status = decision
		proposal.ResponseMessage = responseMessage
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// DeleteProposal hard-deletes a proposal unless it is the most recent entry of
// its booking's history. The latest-entry check runs inside the delete
// transaction, so a concurrent submit that makes the target deletable (or a
// concurrent delete that makes it the new latest) is decided at commit time.
func (s *gormStore) DeleteProposal(ctx context.Context, id int64) (*model.ScheduleProposal, error) {
	var proposal model.ScheduleProposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&proposal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "proposal", ID: id}
			}
			return fmt.Errorf("failed to fetch proposal %d: %w", id, err)
		}

		var latest model.ScheduleProposal
		if err := tx.Where("booking_id = ?", proposal.BookingID).
			Order("created_at DESC, id DESC").
			First(&latest).Error; err != nil {
			return fmt.Errorf("failed to find latest proposal for booking %d: %w", proposal.BookingID, err)
		}
		if latest.ID == proposal.ID {
			return &InvalidStateError{Reason: "the latest entry in a negotiation history cannot be deleted", Current: proposal.Status}
		}

		res := tx.Delete(&model.ScheduleProposal{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete proposal %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Resource: "proposal", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ProposalsByBooking returns the full negotiation history, most recent first.
// Ties on created_at break by id, which is insertion order.
func (s *gormStore) ProposalsByBooking(ctx context.Context, bookingID int64) ([]model.ScheduleProposal, error) {
	var proposals []model.ScheduleProposal
	if err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC, id DESC").
		Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("failed to list proposals for booking %d: %w", bookingID, err)
	}
	return proposals, nil
}
