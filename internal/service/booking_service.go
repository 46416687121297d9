package service

import (
	"context"
	"fmt"
	"time"

	"agendador/internal/domain"
	"agendador/internal/events"
	"agendador/internal/metrics"
	"agendador/internal/models"
	"agendador/internal/schedule"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckedInserter is implemented by stores that can run the conflict check
// and the insert in one transaction (the SQLite backend).
type CheckedInserter interface {
	InsertChecked(ctx context.Context, booking *models.Booking) error
}

type BookingService struct {
	store        domain.BookingStore
	rooms        domain.RoomService
	eventBus     domain.EventPublisher
	validate     *validator.Validate
	atomicCreate bool
	logger       *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, rooms domain.RoomService, eventBus domain.EventPublisher, atomicCreate bool, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:        store,
		rooms:        rooms,
		eventBus:     eventBus,
		validate:     validator.New(),
		atomicCreate: atomicCreate,
		logger:       logger,
	}
}

func (s *BookingService) validateBooking(booking *models.Booking) error {
	if err := s.validate.Struct(booking); err != nil {
		return fmt.Errorf("booking validation failed: %w", err)
	}
	if !booking.EndTime.After(booking.StartTime) {
		return schedule.ErrInvalidRange
	}
	if _, err := s.rooms.RoomByID(booking.RoomID); err != nil {
		return err
	}
	return nil
}

// Create validates the booking, checks the requested slot against the
// room's current bookings and stores it. The check and the insert are two
// separate store calls unless atomic create is enabled, so two concurrent
// creators can both pass the check; the SQLite backend closes the window
// with InsertChecked.
func (s *BookingService) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusConfirmed
	}

	if err := s.validateBooking(booking); err != nil {
		return err
	}

	if checked, ok := s.store.(CheckedInserter); ok && s.atomicCreate {
		if err := checked.InsertChecked(ctx, booking); err != nil {
			if _, isConflict := err.(*domain.ConflictError); isConflict {
				metrics.IncBookingConflict()
			}
			return err
		}
	} else {
		existing, err := s.store.ByRoom(ctx, booking.RoomID)
		if err != nil {
			return err
		}

		colliding, err := schedule.FindConflict(booking.StartTime, booking.EndTime, existing)
		if err != nil {
			return err
		}
		if colliding != nil {
			metrics.IncBookingConflict()
			return &domain.ConflictError{
				RoomID: booking.RoomID,
				Start:  booking.StartTime,
				End:    booking.EndTime,
				With:   *colliding,
			}
		}

		if err := s.store.Insert(ctx, booking); err != nil {
			return err
		}
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("room_id", booking.RoomID).
		Str("user_id", booking.UserID).
		Msg("booking created")

	return nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// Update replaces the stored record whose ID matches. The new interval is
// re-checked against the room's other bookings.
func (s *BookingService) Update(ctx context.Context, booking *models.Booking, actor *models.User) error {
	current, err := s.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	if !canModify(current, actor) {
		return domain.ErrForbidden
	}

	if booking.Status == "" {
		booking.Status = current.Status
	}
	if booking.UserID == "" {
		booking.UserID = current.UserID
	}
	if err := s.validateBooking(booking); err != nil {
		return err
	}

	existing, err := s.store.ByRoom(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	others := make([]models.Booking, 0, len(existing))
	for _, b := range existing {
		if b.ID != booking.ID {
			others = append(others, b)
		}
	}

	if booking.IsActive() {
		colliding, err := schedule.FindConflict(booking.StartTime, booking.EndTime, others)
		if err != nil {
			return err
		}
		if colliding != nil {
			metrics.IncBookingConflict()
			return &domain.ConflictError{
				RoomID: booking.RoomID,
				Start:  booking.StartTime,
				End:    booking.EndTime,
				With:   *colliding,
			}
		}
	}

	booking.CreatedAt = current.CreatedAt
	if err := s.store.Update(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingUpdated, booking)
	return nil
}

// Cancel marks the booking cancelled. Cancellation is terminal; the record
// stays in the store but stops occupying its slot.
func (s *BookingService) Cancel(ctx context.Context, id string, actor *models.User) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(booking, actor) {
		return domain.ErrForbidden
	}

	booking.Status = models.StatusCancelled
	if err := s.store.Update(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCancelled, booking)
	s.logger.Info().Str("booking_id", id).Msg("booking cancelled")
	return nil
}

// Delete removes the record. Unknown IDs are a no-op, so Delete is
// idempotent.
func (s *BookingService) Delete(ctx context.Context, id string, actor *models.User) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err == domain.ErrBookingNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if !canModify(booking, actor) {
		return domain.ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, booking)
	return nil
}

func (s *BookingService) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.store.ByUser(ctx, userID)
}

func (s *BookingService) ByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	if _, err := s.rooms.RoomByID(roomID); err != nil {
		return nil, err
	}
	return s.store.ByRoom(ctx, roomID)
}

// RoomDay returns the room's bookings for one calendar day, ordered by
// start time.
func (s *BookingService) RoomDay(ctx context.Context, roomID string, day time.Time) ([]models.Booking, error) {
	bookings, err := s.ByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return schedule.ByDay(bookings, day), nil
}

// CheckSlot reports the booking colliding with [start, end) in the room,
// or nil when the slot is free. Read-only probe for the availability UI;
// the result may be stale by the time a create lands.
func (s *BookingService) CheckSlot(ctx context.Context, roomID string, start, end time.Time) (*models.Booking, error) {
	existing, err := s.ByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return schedule.FindConflict(start, end, existing)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		UserID:    booking.UserID,
		Title:     booking.Title,
		Status:    booking.Status,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event")
	}
}

func canModify(booking *models.Booking, actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || booking.UserID == actor.ID
}
