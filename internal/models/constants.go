package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	// DefaultSessionTTL время жизни сессии пользователя
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// BookingsSnapshotKey ключ, под которым хранится снапшот всех бронирований
	BookingsSnapshotKey = "bookings"

	// EventQueueSize размер очереди доставки событий
	EventQueueSize = 1000

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 60

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах
)
