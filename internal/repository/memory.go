package repository

import (
	"context"
	"sync"

	"agendador/internal/domain"
	"agendador/internal/models"
)

// MemoryBookingStore keeps the whole collection in process memory with the
// same snapshot semantics as the Redis store. Used as the failover fallback
// and as the standalone backend in tests.
type MemoryBookingStore struct {
	mu       sync.Mutex
	bookings []models.Booking
}

func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{}
}

func (s *MemoryBookingStore) GetAll(ctx context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBookings(s.bookings), nil
}

func (s *MemoryBookingStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (s *MemoryBookingStore) Insert(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == booking.ID {
			return domain.ErrDuplicateID
		}
	}
	s.bookings = append(s.bookings, *booking)
	return nil
}

func (s *MemoryBookingStore) Update(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == booking.ID {
			s.bookings[i] = *booking
			return nil
		}
	}
	return domain.ErrBookingNotFound
}

func (s *MemoryBookingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return nil
		}
	}
	// Deleting an absent booking is a no-op.
	return nil
}

func (s *MemoryBookingStore) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryBookingStore) ByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func cloneBookings(in []models.Booking) []models.Booking {
	out := make([]models.Booking, len(in))
	copy(out, in)
	return out
}
