package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"agendador/internal/config"
	"agendador/internal/domain"
	"agendador/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisBookingStore persists the whole booking collection as one JSON blob
// under a single key, read as a full snapshot and written back as a full
// snapshot on every mutation. Concurrent writers from different processes
// are last-write-wins; the mutex only makes each call atomic with respect
// to itself within this process.
type RedisBookingStore struct {
	client *redis.Client
	key    string
	mu     sync.Mutex
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	client := redis.NewClient(options)

	return client
}

func NewRedisBookingStore(client *redis.Client) *RedisBookingStore {
	return &RedisBookingStore{
		client: client,
		key:    models.BookingsSnapshotKey,
	}
}

func (s *RedisBookingStore) load(ctx context.Context) ([]models.Booking, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings snapshot: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal([]byte(val), &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings snapshot: %w", err)
	}
	return bookings, nil
}

func (s *RedisBookingStore) save(ctx context.Context, bookings []models.Booking) error {
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to marshal bookings snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set bookings snapshot: %w", err)
	}
	return nil
}

func (s *RedisBookingStore) GetAll(ctx context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *RedisBookingStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (s *RedisBookingStore) Insert(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range bookings {
		if bookings[i].ID == booking.ID {
			return domain.ErrDuplicateID
		}
	}
	return s.save(ctx, append(bookings, *booking))
}

func (s *RedisBookingStore) Update(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range bookings {
		if bookings[i].ID == booking.ID {
			bookings[i] = *booking
			return s.save(ctx, bookings)
		}
	}
	return domain.ErrBookingNotFound
}

func (s *RedisBookingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return s.save(ctx, append(bookings[:i], bookings[i+1:]...))
		}
	}
	return nil
}

func (s *RedisBookingStore) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *RedisBookingStore) ByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
