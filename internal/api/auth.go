package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"agendador/internal/metrics"
	"agendador/internal/models"

	"github.com/julienschmidt/httprouter"
)

type contextKey string

const userContextKey contextKey = "user"

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_login")

	if !s.allowUnauthenticated(r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_signup")

	if !s.allowUnauthenticated(r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, token, err := s.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_logout")

	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// requireUser resolves the bearer token and puts the user on the request
// context. Authenticated traffic is rate-limited per user.
func (s *Server) requireUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := s.auth.Resolve(r.Context(), token)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if !s.limiter.Allow(user.ID) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx), ps)
	}
}

func (s *Server) requireAdmin(next httprouter.Handle) httprouter.Handle {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		user := userFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r, ps)
	})
}

// allowUnauthenticated throttles login/signup by remote host through the
// session store so the window survives restarts when Redis backs it.
func (s *Server) allowUnauthenticated(r *http.Request) bool {
	if s.cfg.RateLimitRequests <= 0 {
		return true
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		host = "unknown"
	}

	window := time.Duration(s.cfg.RateLimitWindow) * time.Second
	ok, err := s.sessions.CheckRateLimit(r.Context(), "auth:"+host, s.cfg.RateLimitRequests, window)
	if err != nil {
		// не блокируем вход из-за недоступного Redis
		s.logger.Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	return ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
