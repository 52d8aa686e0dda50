package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/runner"
	"github.com/aretw0/tablebot/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Server exposes the booking assistant over HTTP and WebSocket.
type Server struct {
	bot      runner.Turner
	sessions *session.Manager
	logger   *slog.Logger
	metrics  http.Handler
	limiter  *limiterStore
	origins  []string
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRateLimit limits turns per session to r per second with the given burst.
// A zero rate disables limiting.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Server) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = newLimiterStore(r, burst)
	}
}

// WithAllowedOrigins restricts WebSocket upgrades to the given origins.
// No origins (the default) accepts any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewHandler creates the HTTP handler serving bot over sessions.
func NewHandler(bot runner.Turner, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		bot:      bot,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Get("/{id}", s.getSession)
		r.Delete("/{id}", s.deleteSession)
		r.Post("/{id}/turns", s.postTurn)
		r.Get("/{id}/ws", s.chat)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range s.origins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// TurnRequest is the body of POST /sessions/{id}/turns.
type TurnRequest struct {
	Utterance string `json:"utterance"`
}

// TurnResponse is the answer to a turn.
type TurnResponse struct {
	Reply   string          `json:"reply"`
	Session *domain.Session `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "failed to create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "failed to list sessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "failed to load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	resp, status, err := s.turn(r.Context(), id, body.Utterance)
	if err != nil {
		if status >= http.StatusInternalServerError {
			s.fail(w, r, status, "turn failed", err)
			return
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

var (
	errEmptyUtterance = errors.New("utterance is empty")
	errRateLimited    = errors.New("rate limit exceeded, try again later")
)

// turn sanitizes and rate-limits an utterance, then runs it against the
// session under the session lock. The status is meaningful only on error.
func (s *Server) turn(ctx context.Context, id, utterance string) (*TurnResponse, int, error) {
	text, err := runner.SanitizeInput(utterance)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	if text == "" {
		return nil, http.StatusBadRequest, errEmptyUtterance
	}
	if s.limiter != nil && !s.limiter.allow(id) {
		s.logger.Warn("rate limit exceeded", "session_id", id)
		return nil, http.StatusTooManyRequests, errRateLimited
	}

	var reply string
	sess, err := s.sessions.Turn(ctx, id, func(ctx context.Context, sess *domain.Session) error {
		reply = s.bot.Turn(ctx, sess, text)
		return nil
	})
	if errors.Is(err, domain.ErrInvalidSession) {
		return nil, http.StatusBadRequest, err
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &TurnResponse{Reply: reply, Session: sess}, http.StatusOK, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	s.logger.Error(msg, "err", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
