package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agendador/internal/metrics"
	"agendador/internal/models"
	"agendador/internal/schedule"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("rooms_list")
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.rooms.Rooms()})
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("rooms_get")

	room, err := s.rooms.RoomByID(ps.ByName("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// handleRoomBookings returns the room's schedule for one day when ?day= is
// given, otherwise every booking of the room.
func (s *Server) handleRoomBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("rooms_bookings")

	roomID := ps.ByName("id")
	dayStr := r.URL.Query().Get("day")

	var bookings []models.Booking
	var err error
	if dayStr != "" {
		var day time.Time
		day, err = time.Parse("2006-01-02", dayStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid day format; expected YYYY-MM-DD")
			return
		}
		bookings, err = s.bookings.RoomDay(r.Context(), roomID, day)
	} else {
		bookings, err = s.bookings.ByRoom(r.Context(), roomID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleRoomAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("rooms_availability")

	start, err := parseRFC3339(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseRFC3339(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	colliding, err := s.bookings.CheckSlot(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{"available": colliding == nil}
	if colliding != nil {
		resp["conflict"] = colliding
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMyBookings lists the caller's bookings, optionally partitioned with
// ?window=upcoming|past.
func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("bookings_list")

	user := userFromContext(r.Context())
	bookings, err := s.bookings.ByUser(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch window := r.URL.Query().Get("window"); window {
	case "", "all":
	case "upcoming":
		bookings = schedule.Upcoming(bookings, time.Now())
	case "past":
		bookings = schedule.Past(bookings, time.Now())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown window: %s", window))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("bookings_create")

	var booking models.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// the booking belongs to the caller regardless of the body
	booking.UserID = userFromContext(r.Context()).ID

	if err := s.bookings.Create(r.Context(), &booking); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_get")

	booking, err := s.bookings.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_update")

	var booking models.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	booking.ID = ps.ByName("id")

	if err := s.bookings.Update(r.Context(), &booking, userFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_delete")

	if err := s.bookings.Delete(r.Context(), ps.ByName("id"), userFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_cancel")

	id := ps.ByName("id")
	if err := s.bookings.Cancel(r.Context(), id, userFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	booking, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("admin_export")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.xlsx"`)
	if err := s.exporter.WriteSchedule(r.Context(), w); err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
	}
}

func parseRFC3339(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("start and end are required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q; expected RFC3339", raw)
	}
	return t, nil
}
