package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"agendador/internal/domain"
	"agendador/internal/models"
	"agendador/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Schedule"

// Exporter renders the whole schedule as an xlsx grid: one column per day,
// one row per room, a cell per booked slot.
type Exporter struct {
	store  domain.BookingStore
	rooms  domain.RoomService
	logger *zerolog.Logger
}

func NewExporter(store domain.BookingStore, rooms domain.RoomService, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, rooms: rooms, logger: logger}
}

// WriteSchedule streams the workbook into w.
func (e *Exporter) WriteSchedule(ctx context.Context, w io.Writer) error {
	f, err := e.buildWorkbook(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func (e *Exporter) buildWorkbook(ctx context.Context) (*excelize.File, error) {
	bookings, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting bookings: %w", err)
	}

	active := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			active = append(active, b)
		}
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	days := coveredDays(active)

	title := "Room schedule"
	if len(days) > 0 {
		title = fmt.Sprintf("Room schedule: %s - %s",
			days[0].Format("02.01.2006"), days[len(days)-1].Format("02.01.2006"))
	}
	_ = f.SetCellValue(sheetName, "A1", title)

	dateCols := e.writeDateHeaders(f, days)
	e.writeRoomHeaders(f)
	e.writeBookingCells(f, active, days, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	if len(days) > 0 {
		last, _ := excelize.ColumnNumberToName(len(days) + 1)
		_ = f.SetColWidth(sheetName, "B", last, 28)
		_ = f.MergeCell(sheetName, "A1", last+"1")
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	return f, nil
}

func (e *Exporter) writeDateHeaders(f *excelize.File, days []time.Time) map[string]int {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	cols := make(map[string]int, len(days))
	for i, day := range days {
		col := i + 2
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, day.Format("02.01"))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		cols[day.Format("2006-01-02")] = col
	}
	return cols
}

func (e *Exporter) writeRoomHeaders(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, room := range e.rooms.Rooms() {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s (%d)", room.Name, room.Capacity))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (e *Exporter) writeBookingCells(f *excelize.File, bookings []models.Booking, days []time.Time, dateCols map[string]int) {
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	for _, day := range days {
		col, ok := dateCols[day.Format("2006-01-02")]
		if !ok {
			continue
		}

		daily := schedule.ByDay(bookings, day)
		byRoom := make(map[string][]models.Booking)
		for _, b := range daily {
			byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
		}

		for i, room := range e.rooms.Rooms() {
			slots := byRoom[room.ID]
			if len(slots) == 0 {
				continue
			}

			var cellValue string
			for _, b := range slots {
				cellValue += fmt.Sprintf("%s-%s %s\n",
					b.StartTime.Format("15:04"), b.EndTime.Format("15:04"), b.Title)
			}

			cell, _ := excelize.CoordinatesToCellName(col, i+3)
			_ = f.SetCellValue(sheetName, cell, cellValue)
			_ = f.SetCellStyle(sheetName, cell, cell, wrapStyle)
		}
	}
}

// coveredDays returns every calendar day between the earliest start and the
// latest start, inclusive.
func coveredDays(bookings []models.Booking) []time.Time {
	if len(bookings) == 0 {
		return nil
	}

	first, last := bookings[0].StartTime, bookings[0].StartTime
	for _, b := range bookings[1:] {
		if b.StartTime.Before(first) {
			first = b.StartTime
		}
		if b.StartTime.After(last) {
			last = b.StartTime
		}
	}

	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	end := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location())

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
