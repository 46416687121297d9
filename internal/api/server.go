package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"agendador/internal/config"
	"agendador/internal/domain"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// Server exposes the REST API the booking SPA talks to.
type Server struct {
	cfg      config.ServerConfig
	bookings domain.BookingService
	rooms    domain.RoomService
	auth     domain.AuthService
	sessions domain.SessionStore
	exporter ScheduleExporter
	limiter  *rateLimiter
	logger   *zerolog.Logger
	server   *http.Server
}

// ScheduleExporter renders the full schedule as an xlsx workbook.
type ScheduleExporter interface {
	WriteSchedule(ctx context.Context, w io.Writer) error
}

func NewServer(
	cfg config.ServerConfig,
	bookings domain.BookingService,
	rooms domain.RoomService,
	auth domain.AuthService,
	sessions domain.SessionStore,
	exporter ScheduleExporter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		bookings: bookings,
		rooms:    rooms,
		auth:     auth,
		sessions: sessions,
		exporter: exporter,
		limiter:  newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		logger:   logger,
	}

	router := httprouter.New()

	router.GET("/healthz", s.handleHealth)

	router.POST("/api/v1/auth/login", s.handleLogin)
	router.POST("/api/v1/auth/signup", s.handleSignup)
	router.POST("/api/v1/auth/logout", s.requireUser(s.handleLogout))

	router.GET("/api/v1/rooms", s.requireUser(s.handleRooms))
	router.GET("/api/v1/rooms/:id", s.requireUser(s.handleRoom))
	router.GET("/api/v1/rooms/:id/bookings", s.requireUser(s.handleRoomBookings))
	router.GET("/api/v1/rooms/:id/availability", s.requireUser(s.handleRoomAvailability))

	router.GET("/api/v1/bookings", s.requireUser(s.handleMyBookings))
	router.POST("/api/v1/bookings", s.requireUser(s.handleCreateBooking))
	router.GET("/api/v1/bookings/:id", s.requireUser(s.handleGetBooking))
	router.PUT("/api/v1/bookings/:id", s.requireUser(s.handleUpdateBooking))
	router.DELETE("/api/v1/bookings/:id", s.requireUser(s.handleDeleteBooking))
	router.POST("/api/v1/bookings/:id/cancel", s.requireUser(s.handleCancelBooking))

	router.GET("/api/v1/admin/export", s.requireAdmin(s.handleExport))

	handler := s.recoverMiddleware(s.loggingMiddleware(router))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
