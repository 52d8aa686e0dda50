package fakeapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultRestaurant is the only restaurant served unless configured otherwise.
const DefaultRestaurant = "TheHungryUnicorn"

var defaultTimes = []string{
	"12:00:00", "12:30:00", "13:00:00", "13:30:00",
	"18:00:00", "18:30:00", "19:00:00", "19:30:00", "20:00:00", "20:30:00",
}

var cancellationReasons = map[int]string{
	1: "Customer Request",
	2: "Restaurant Closure",
	3: "Weather",
	4: "Emergency",
	5: "No Show",
}

type booking struct {
	ID                 int       `json:"booking_id"`
	Reference          string    `json:"booking_reference"`
	Restaurant         string    `json:"restaurant"`
	VisitDate          string    `json:"visit_date"`
	VisitTime          string    `json:"visit_time"`
	PartySize          int       `json:"party_size"`
	ChannelCode        string    `json:"channel_code"`
	SpecialRequests    string    `json:"special_requests,omitempty"`
	Status             string    `json:"status"`
	Customer           customer  `json:"customer"`
	CreatedAt          time.Time `json:"created_at"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
}

type customer struct {
	FirstName string `json:"first_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
	Email     string `json:"email,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
}

// Server is an in-memory implementation of the restaurant booking API.
type Server struct {
	restaurant   string
	token        string
	times        []string
	maxPartySize int
	slotCapacity int
	logger       *slog.Logger
	now          func() time.Time

	mu       sync.Mutex
	nextID   int
	bookings map[string]*booking
}

// Option configures a Server.
type Option func(*Server)

// WithRestaurant sets the served restaurant name.
func WithRestaurant(name string) Option {
	return func(s *Server) { s.restaurant = name }
}

// WithToken requires requests to carry "Authorization: Bearer <token>".
// An empty token disables authentication.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithOpeningTimes replaces the bookable times (HH:MM:SS).
func WithOpeningTimes(times ...string) Option {
	return func(s *Server) { s.times = times }
}

// WithMaxPartySize sets the largest party a slot accepts.
func WithMaxPartySize(n int) Option {
	return func(s *Server) { s.maxPartySize = n }
}

// WithSlotCapacity sets how many bookings a single time slot takes.
func WithSlotCapacity(n int) Option {
	return func(s *Server) { s.slotCapacity = n }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty booking API.
func New(opts ...Option) *Server {
	s := &Server{
		restaurant:   DefaultRestaurant,
		times:        defaultTimes,
		maxPartySize: 8,
		slotCapacity: 4,
		logger:       logging.NewNop(),
		now:          time.Now,
		nextID:       1,
		bookings:     make(map[string]*booking),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api/ConsumerApi/v1/Restaurant/{restaurant}", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.restaurantOnly)
		r.Post("/AvailabilitySearch", s.searchAvailability)
		r.Post("/BookingWithStripeToken", s.createBooking)
		r.Get("/Booking/{reference}", s.getBooking)
		r.Patch("/Booking/{reference}", s.updateBooking)
		r.Post("/Booking/{reference}/Cancel", s.cancelBooking)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "Invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) restaurantOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "restaurant") != s.restaurant {
			writeError(w, http.StatusNotFound, "Restaurant not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) searchAvailability(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	date, err := parseDate(r.PostForm.Get("VisitDate"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	party, err := s.parseParty(r.PostForm.Get("PartySize"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	slots := make([]map[string]any, 0, len(s.times))
	for _, t := range s.times {
		current := s.countLocked(date, t)
		slots = append(slots, map[string]any{
			"time":             t,
			"available":        current < s.slotCapacity,
			"max_party_size":   s.maxPartySize,
			"current_bookings": current,
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"restaurant":      s.restaurant,
		"visit_date":      date,
		"party_size":      party,
		"channel_code":    channelOrDefault(r.PostForm.Get("ChannelCode")),
		"available_slots": slots,
		"total_slots":     len(slots),
	})
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	form := r.PostForm
	date, err := parseDate(form.Get("VisitDate"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	at, err := s.parseTime(form.Get("VisitTime"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	party, err := s.parseParty(form.Get("PartySize"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countLocked(date, at) >= s.slotCapacity {
		writeError(w, http.StatusConflict, fmt.Sprintf("No availability on %s at %s", date, at))
		return
	}
	b := &booking{
		ID:              s.nextID,
		Reference:       s.newReferenceLocked(),
		Restaurant:      s.restaurant,
		VisitDate:       date,
		VisitTime:       at,
		PartySize:       party,
		ChannelCode:     channelOrDefault(form.Get("ChannelCode")),
		SpecialRequests: form.Get("SpecialRequests"),
		Status:          "confirmed",
		Customer: customer{
			FirstName: form.Get("Customer[FirstName]"),
			Surname:   form.Get("Customer[Surname]"),
			Email:     form.Get("Customer[Email]"),
			Mobile:    form.Get("Customer[Mobile]"),
		},
		CreatedAt: s.now().UTC(),
	}
	s.nextID++
	s.bookings[b.Reference] = b
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[chi.URLParam(r, "reference")]
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	form := r.PostForm

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[chi.URLParam(r, "reference")]
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if b.Status == "cancelled" {
		writeError(w, http.StatusConflict, "Booking is cancelled")
		return
	}

	next := *b
	updates := make(map[string]any)
	if v := form.Get("VisitDate"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		next.VisitDate = date
		updates["visit_date"] = date
	}
	if v := form.Get("VisitTime"); v != "" {
		at, err := s.parseTime(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		next.VisitTime = at
		updates["visit_time"] = at
	}
	if v := form.Get("PartySize"); v != "" {
		party, err := s.parseParty(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		next.PartySize = party
		updates["party_size"] = party
	}
	if v := form.Get("SpecialRequests"); v != "" {
		next.SpecialRequests = v
		updates["special_requests"] = v
	}
	if len(updates) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "No fields to update")
		return
	}
	*b = next
	writeJSON(w, http.StatusOK, map[string]any{
		"booking_reference": b.Reference,
		"booking_id":        b.ID,
		"restaurant":        b.Restaurant,
		"updates":           updates,
		"status":            "updated",
		"message":           fmt.Sprintf("Booking %s has been successfully updated", b.Reference),
	})
}

func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	reasonID, err := strconv.Atoi(r.PostForm.Get("cancellationReasonId"))
	if err != nil {
		reasonID = 1
	}
	reason, ok := cancellationReasons[reasonID]
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown cancellation reason %d", reasonID))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[chi.URLParam(r, "reference")]
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if b.Status == "cancelled" {
		writeError(w, http.StatusConflict, "Booking is already cancelled")
		return
	}
	b.Status = "cancelled"
	b.CancellationReason = reason
	writeJSON(w, http.StatusOK, map[string]any{
		"booking_reference":      b.Reference,
		"booking_id":             b.ID,
		"restaurant":             b.Restaurant,
		"cancellation_reason_id": reasonID,
		"cancellation_reason":    reason,
		"status":                 "cancelled",
		"message":                fmt.Sprintf("Booking %s has been successfully cancelled", b.Reference),
		"cancelled_at":           s.now().UTC(),
	})
}

func (s *Server) countLocked(date, at string) int {
	n := 0
	for _, b := range s.bookings {
		if b.VisitDate == date && b.VisitTime == at && b.Status != "cancelled" {
			n++
		}
	}
	return n
}

// newReferenceLocked returns an unused seven character reference containing
// at least one digit.
func (s *Server) newReferenceLocked() string {
	for {
		ref := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:7]
		if !strings.ContainsAny(ref, "0123456789") {
			continue
		}
		if _, taken := s.bookings[ref]; !taken {
			return ref
		}
	}
}

func (s *Server) parseParty(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("PartySize must be a positive integer")
	}
	if n > s.maxPartySize {
		return 0, fmt.Errorf("PartySize exceeds the maximum of %d", s.maxPartySize)
	}
	return n, nil
}

func (s *Server) parseTime(raw string) (string, error) {
	if _, err := time.Parse("15:04:05", raw); err != nil {
		return "", fmt.Errorf("VisitTime must be HH:MM:SS")
	}
	for _, t := range s.times {
		if t == raw {
			return raw, nil
		}
	}
	return "", fmt.Errorf("%s is not a bookable time", raw)
}

func parseDate(raw string) (string, error) {
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return "", fmt.Errorf("VisitDate must be YYYY-MM-DD")
	}
	return raw, nil
}

func channelOrDefault(ch string) string {
	if ch == "" {
		return "ONLINE"
	}
	return ch
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
