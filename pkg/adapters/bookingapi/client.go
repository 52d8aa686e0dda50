package bookingapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Defaults of the booking API client.
const (
	DefaultBaseURL    = "http://localhost:8547"
	DefaultRestaurant = "TheHungryUnicorn"
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultBackoff    = 300 * time.Millisecond
)

const maxResponseBytes = 1 << 20

// Client talks to the restaurant booking API. It implements ports.BookingService.
type Client struct {
	baseURL    string
	restaurant string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is left
// as the caller configured it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// It has no effect together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRestaurant sets the restaurant (microsite) name used in request paths.
func WithRestaurant(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.restaurant = name
		}
	}
}

// WithRetry sets how many times a retryable failure is retried and the
// initial backoff interval, which doubles after each attempt.
func WithRetry(retries int, initial time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = initial
	}
}

// WithBreaker protects the client with a circuit breaker built from settings.
// Client-side errors (4xx) do not count as failures.
func WithBreaker(settings gobreaker.Settings) Option {
	return func(c *Client) {
		if settings.Name == "" {
			settings.Name = "booking-api"
		}
		if settings.IsSuccessful == nil {
			settings.IsSuccessful = breakerSuccess
		}
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

// WithLogger sets the logger for retries and breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the API at baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		restaurant: DefaultRestaurant,
		token:      token,
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		backoff:    DefaultBackoff,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BreakerState reports the circuit breaker state, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

func (c *Client) path(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/api/ConsumerApi/v1/Restaurant/" + url.PathEscape(c.restaurant) + "/" + strings.Join(escaped, "/")
}

// do performs a request with retries and the circuit breaker and decodes the
// JSON object in the response body.
func (c *Client) do(ctx context.Context, op, method, endpoint string, form url.Values) (map[string]any, error) {
	if c.breaker == nil {
		return c.retry(ctx, op, method, endpoint, form)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.retry(ctx, op, method, endpoint, form)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &domain.RemoteError{Op: op, Detail: "booking service unavailable", Err: err}
	}
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func (c *Client) retry(ctx context.Context, op, method, endpoint string, form url.Values) (map[string]any, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoff
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0

	var b backoff.BackOff = policy
	if c.retries >= 0 {
		b = backoff.WithMaxRetries(b, uint64(c.retries))
	}
	b = backoff.WithContext(b, ctx)

	var body map[string]any
	attempt := func() error {
		var err error
		body, err = c.once(ctx, op, method, endpoint, form)
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying booking api call", "op", op, "err", err, "wait", wait)
	}
	if err := backoff.RetryNotify(attempt, b, notify); err != nil {
		var remote *domain.RemoteError
		if !errors.As(err, &remote) {
			err = &domain.RemoteError{Op: op, Err: err}
		}
		return nil, err
	}
	return body, nil
}

// once performs a single attempt. Non-retryable failures are wrapped with
// backoff.Permanent.
func (c *Client) once(ctx context.Context, op, method, endpoint string, form url.Values) (map[string]any, error) {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, backoff.Permanent(&domain.RemoteError{Op: op, Err: err})
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		remote := &domain.RemoteError{Op: op, Err: err}
		if ctx.Err() != nil {
			remote.Err = ctx.Err()
			return nil, backoff.Permanent(remote)
		}
		return nil, remote
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.RemoteError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		remote := &domain.RemoteError{Op: op, StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
		if remote.Temporary() {
			return nil, remote
		}
		return nil, backoff.Permanent(remote)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, backoff.Permanent(&domain.RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     "malformed response",
			Err:        err,
		})
	}
	return body, nil
}

// errorDetail extracts a human readable message from an error body.
func errorDetail(raw []byte) string {
	var body map[string]any
	if json.Unmarshal(raw, &body) == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	detail := strings.TrimSpace(string(raw))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}

func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return !remote.Temporary() && remote.StatusCode != 0
	}
	return false
}

// SearchAvailability lists the slots of a date for a party size.
func (c *Client) SearchAvailability(ctx context.Context, q domain.AvailabilityQuery) ([]domain.AvailabilitySlot, error) {
	form := url.Values{}
	form.Set("VisitDate", q.VisitDate)
	form.Set("PartySize", strconv.Itoa(q.PartySize))
	form.Set("ChannelCode", channelOrDefault(q.Channel))

	body, err := c.do(ctx, domain.OpSearchAvailability, http.MethodPost, c.path("AvailabilitySearch"), form)
	if err != nil {
		return nil, err
	}
	var resp availabilityResponse
	if err := decode(domain.OpSearchAvailability, body, &resp); err != nil {
		return nil, err
	}
	slots := make([]domain.AvailabilitySlot, 0, len(resp.AvailableSlots))
	for _, s := range resp.AvailableSlots {
		slots = append(slots, s.toDomain())
	}
	return slots, nil
}

// CreateBooking books a table.
func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	form := url.Values{}
	form.Set("VisitDate", req.VisitDate)
	form.Set("VisitTime", req.VisitTime)
	form.Set("PartySize", strconv.Itoa(req.PartySize))
	form.Set("ChannelCode", channelOrDefault(req.Channel))
	setIf(form, "SpecialRequests", req.SpecialRequests)
	setIf(form, "Customer[FirstName]", req.Customer.FirstName)
	setIf(form, "Customer[Surname]", req.Customer.Surname)
	setIf(form, "Customer[Email]", req.Customer.Email)
	setIf(form, "Customer[Mobile]", req.Customer.Mobile)

	body, err := c.do(ctx, domain.OpCreateBooking, http.MethodPost, c.path("BookingWithStripeToken"), form)
	if err != nil {
		return domain.Booking{}, err
	}
	var rec bookingRecord
	if err := decode(domain.OpCreateBooking, body, &rec); err != nil {
		return domain.Booking{}, err
	}
	if rec.BookingReference == "" {
		return domain.Booking{}, &domain.RemoteError{Op: domain.OpCreateBooking, Detail: "response missing booking_reference"}
	}
	return rec.toDomain(), nil
}

// GetBooking fetches a booking by reference.
func (c *Client) GetBooking(ctx context.Context, reference string) (domain.Booking, error) {
	body, err := c.do(ctx, domain.OpGetBooking, http.MethodGet, c.path("Booking", reference), nil)
	if err != nil {
		return domain.Booking{}, err
	}
	var rec bookingRecord
	if err := decode(domain.OpGetBooking, body, &rec); err != nil {
		return domain.Booking{}, err
	}
	return rec.toDomain(), nil
}

// UpdateBooking changes the date, time or party size of a booking.
func (c *Client) UpdateBooking(ctx context.Context, reference string, update domain.BookingUpdate) (domain.UpdateResult, error) {
	form := url.Values{}
	for k, v := range update.Fields() {
		form.Set(k, v)
	}

	body, err := c.do(ctx, domain.OpUpdateBooking, http.MethodPatch, c.path("Booking", reference), form)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	var rec updateRecord
	if err := decode(domain.OpUpdateBooking, body, &rec); err != nil {
		return domain.UpdateResult{}, err
	}
	return domain.UpdateResult{Reference: rec.BookingReference, Status: rec.Status, Message: rec.Message}, nil
}

// CancelBooking cancels a booking with the given reason code.
func (c *Client) CancelBooking(ctx context.Context, reference string, reasonID int) (domain.Cancellation, error) {
	form := url.Values{}
	form.Set("micrositeName", c.restaurant)
	form.Set("bookingReference", reference)
	form.Set("cancellationReasonId", strconv.Itoa(reasonID))

	body, err := c.do(ctx, domain.OpCancelBooking, http.MethodPost, c.path("Booking", reference, "Cancel"), form)
	if err != nil {
		return domain.Cancellation{}, err
	}
	var rec cancelRecord
	if err := decode(domain.OpCancelBooking, body, &rec); err != nil {
		return domain.Cancellation{}, err
	}
	return domain.Cancellation{Reference: rec.BookingReference, Reason: rec.CancellationReason, Status: rec.Status}, nil
}

func channelOrDefault(ch string) string {
	if ch == "" {
		return domain.DefaultChannel
	}
	return ch
}

func setIf(form url.Values, key, value string) {
	if value != "" {
		form.Set(key, value)
	}
}
