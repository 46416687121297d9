package repository

import (
	"context"
	"sync/atomic"
	"time"

	"agendador/internal/domain"
	"agendador/internal/models"

	"github.com/rs/zerolog"
)

// FailoverBookingStore serves from the primary store until it errors, then
// switches to the fallback and probes the primary again after a cooldown.
// Once failed over, reads and writes go to the fallback, so the two stores
// can diverge until the primary recovers; accepted for session-scoped data.
type FailoverBookingStore struct {
	primary   domain.BookingStore
	fallback  domain.BookingStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverBookingStore(primary, fallback domain.BookingStore, logger *zerolog.Logger) *FailoverBookingStore {
	return &FailoverBookingStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverBookingStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("Primary booking store failed, falling back to memory")
	s.isDown.Store(true)
	s.lastCheck = time.Now()
}

func (s *FailoverBookingStore) primaryUp() bool {
	if !s.isDown.Load() {
		return true
	}
	// Try to recover after 1 minute
	if time.Since(s.lastCheck) > time.Minute {
		if _, err := s.primary.GetAll(context.Background()); err == nil {
			s.isDown.Store(false)
			return true
		}
		s.lastCheck = time.Now()
	}
	return false
}

func (s *FailoverBookingStore) GetAll(ctx context.Context) ([]models.Booking, error) {
	if s.primaryUp() {
		bookings, err := s.primary.GetAll(ctx)
		if err == nil {
			return bookings, nil
		}
		s.markDown(err)
	}
	return s.fallback.GetAll(ctx)
}

func (s *FailoverBookingStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if s.primaryUp() {
		booking, err := s.primary.GetBooking(ctx, id)
		if err == nil || err == domain.ErrBookingNotFound {
			return booking, err
		}
		s.markDown(err)
	}
	return s.fallback.GetBooking(ctx, id)
}

func (s *FailoverBookingStore) Insert(ctx context.Context, booking *models.Booking) error {
	if s.primaryUp() {
		err := s.primary.Insert(ctx, booking)
		if err == nil || err == domain.ErrDuplicateID {
			return err
		}
		s.markDown(err)
	}
	return s.fallback.Insert(ctx, booking)
}

func (s *FailoverBookingStore) Update(ctx context.Context, booking *models.Booking) error {
	if s.primaryUp() {
		err := s.primary.Update(ctx, booking)
		if err == nil || err == domain.ErrBookingNotFound {
			return err
		}
		s.markDown(err)
	}
	return s.fallback.Update(ctx, booking)
}

func (s *FailoverBookingStore) Delete(ctx context.Context, id string) error {
	if s.primaryUp() {
		err := s.primary.Delete(ctx, id)
		if err == nil {
			return nil
		}
		s.markDown(err)
	}
	return s.fallback.Delete(ctx, id)
}

func (s *FailoverBookingStore) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	if s.primaryUp() {
		bookings, err := s.primary.ByUser(ctx, userID)
		if err == nil {
			return bookings, nil
		}
		s.markDown(err)
	}
	return s.fallback.ByUser(ctx, userID)
}

func (s *FailoverBookingStore) ByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	if s.primaryUp() {
		bookings, err := s.primary.ByRoom(ctx, roomID)
		if err == nil {
			return bookings, nil
		}
		s.markDown(err)
	}
	return s.fallback.ByRoom(ctx, roomID)
}
