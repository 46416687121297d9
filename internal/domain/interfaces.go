package domain

import (
	"context"
	"time"

	"agendador/internal/models"
)

// BookingStore holds the set of bookings. Two backends implement it: the
// per-record SQLite store and the single-blob snapshot store.
type BookingStore interface {
	GetAll(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	Insert(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
	ByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ByRoom(ctx context.Context, roomID string) ([]models.Booking, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type SessionStore interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	Create(ctx context.Context, booking *models.Booking) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking, actor *models.User) error
	Cancel(ctx context.Context, id string, actor *models.User) error
	Delete(ctx context.Context, id string, actor *models.User) error
	ByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ByRoom(ctx context.Context, roomID string) ([]models.Booking, error)
	RoomDay(ctx context.Context, roomID string, day time.Time) ([]models.Booking, error)
	CheckSlot(ctx context.Context, roomID string, start, end time.Time) (*models.Booking, error)
}

type RoomService interface {
	Rooms() []models.Room
	RoomByID(id string) (*models.Room, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*models.User, error)
}
