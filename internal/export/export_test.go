package export

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"agendador/internal/models"
	"agendador/internal/repository"
	"agendador/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSchedule(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryBookingStore()
	rooms := service.NewRoomService([]models.Room{
		{ID: "sala-1", Name: "Sala 1", Capacity: 8},
		{ID: "sala-2", Name: "Sala 2", Capacity: 4},
	})
	logger := zerolog.New(io.Discard)
	exporter := NewExporter(store, rooms, &logger)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, &models.Booking{
		ID: "b1", RoomID: "sala-1", UserID: "u1", Title: "Planning",
		StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour),
		Status: models.StatusConfirmed,
	}))
	require.NoError(t, store.Insert(ctx, &models.Booking{
		ID: "b2", RoomID: "sala-2", UserID: "u2", Title: "Cancelled",
		StartTime: day.Add(12 * time.Hour), EndTime: day.Add(13 * time.Hour),
		Status: models.StatusCancelled,
	}))

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteSchedule(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Schedule", "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "10.03.2026")

	header, err := f.GetCellValue("Schedule", "B2")
	require.NoError(t, err)
	assert.Equal(t, "10.03", header)

	roomRow, err := f.GetCellValue("Schedule", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Sala 1 (8)", roomRow)

	slot, err := f.GetCellValue("Schedule", "B3")
	require.NoError(t, err)
	assert.Contains(t, slot, "10:00-11:00 Planning")

	// cancelled bookings are excluded from the grid
	cancelled, err := f.GetCellValue("Schedule", "B4")
	require.NoError(t, err)
	assert.Empty(t, cancelled)
}

func TestWriteScheduleEmpty(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	rooms := service.NewRoomService([]models.Room{{ID: "sala-1", Name: "Sala 1", Capacity: 8}})
	logger := zerolog.New(io.Discard)
	exporter := NewExporter(store, rooms, &logger)

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteSchedule(context.Background(), &buf))
	assert.NotZero(t, buf.Len())
}
