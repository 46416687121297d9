package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agendador/internal/domain"
	"agendador/internal/models"
	"agendador/internal/schedule"

	"github.com/mattn/go-sqlite3"
)

const bookingColumns = `id, room_id, user_id, title, start_time, end_time, attendees, description, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var attendees sql.NullString
	var description sql.NullString

	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.UserID,
		&b.Title,
		&b.StartTime,
		&b.EndTime,
		&attendees,
		&description,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if attendees.Valid && attendees.String != "" {
		if err := json.Unmarshal([]byte(attendees.String), &b.Attendees); err != nil {
			return nil, fmt.Errorf("failed to decode attendees: %w", err)
		}
	}
	b.Description = description.String

	return &b, nil
}

func encodeAttendees(attendees []string) (string, error) {
	if len(attendees) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(attendees)
	if err != nil {
		return "", fmt.Errorf("failed to encode attendees: %w", err)
	}
	return string(raw), nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// GetAll возвращает все бронирования в порядке добавления
func (db *DB) GetAll(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at, id`
	return db.queryBookings(ctx, query)
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) Insert(ctx context.Context, booking *models.Booking) error {
	attendees, err := encodeAttendees(booking.Attendees)
	if err != nil {
		return err
	}

	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.db.ExecContext(ctx, query,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.Title,
		booking.StartTime,
		booking.EndTime,
		attendees,
		booking.Description,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// InsertChecked runs the conflict check and the insert in one transaction,
// closing the check-then-insert race the plain path accepts. Returns
// *domain.ConflictError when the slot is taken.
func (db *DB) InsertChecked(ctx context.Context, booking *models.Booking) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? AND id != ?`
	rows, err := tx.QueryContext(ctx, query, booking.RoomID, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to load room bookings in tx: %w", err)
	}

	existing := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, *b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	colliding, err := schedule.FindConflict(booking.StartTime, booking.EndTime, existing)
	if err != nil {
		return err
	}
	if colliding != nil {
		return &domain.ConflictError{
			RoomID: booking.RoomID,
			Start:  booking.StartTime,
			End:    booking.EndTime,
			With:   *colliding,
		}
	}

	attendees, err := encodeAttendees(booking.Attendees)
	if err != nil {
		return err
	}

	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	insert := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insert,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.Title,
		booking.StartTime,
		booking.EndTime,
		attendees,
		booking.Description,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("failed to create booking in tx: %w", err)
	}

	return tx.Commit()
}

// Update заменяет запись целиком, кроме created_at
func (db *DB) Update(ctx context.Context, booking *models.Booking) error {
	attendees, err := encodeAttendees(booking.Attendees)
	if err != nil {
		return err
	}

	booking.UpdatedAt = time.Now()

	query := `UPDATE bookings
        SET room_id = ?, user_id = ?, title = ?, start_time = ?, end_time = ?,
            attendees = ?, description = ?, status = ?, updated_at = ?
        WHERE id = ?`

	result, err := db.db.ExecContext(ctx, query,
		booking.RoomID,
		booking.UserID,
		booking.Title,
		booking.StartTime,
		booking.EndTime,
		attendees,
		booking.Description,
		booking.Status,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookingNotFound
	}

	return nil
}

// Delete удаляет бронирование; отсутствующий id не считается ошибкой
func (db *DB) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bookings WHERE id = ?`

	_, err := db.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

func (db *DB) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at, id`
	return db.queryBookings(ctx, query, userID)
}

func (db *DB) ByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? ORDER BY created_at, id`
	return db.queryBookings(ctx, query, roomID)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
