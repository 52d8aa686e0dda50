package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/tablebot/internal/testutils"
	"github.com/aretw0/tablebot/pkg/dialog"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordTurnsAndRemoteCalls(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	stub := testutils.NewStubBookingService()
	engine := dialog.NewEngine(stub, dialog.WithLifecycleHooks(m.Hooks()))
	ctx := context.Background()

	s := domain.NewSession("metrics")
	s.SetSlot(domain.SlotVisitDate, "2025-08-10")
	s.SetSlot(domain.SlotPartySize, "2")
	engine.Handle(ctx, s, "any availability?")
	engine.Handle(ctx, domain.NewSession("other"), "gibberish")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("check_availability", domain.OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("unknown", domain.OutcomeNotMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues(domain.OpSearchAvailability, "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))

	stub.FailAll(&domain.RemoteError{Op: domain.OpSearchAvailability, StatusCode: http.StatusBadGateway})
	engine.Handle(ctx, s, "any availability?")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues(domain.OpSearchAvailability, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("check_availability", domain.OutcomeFailed)))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics(nil)
	m.Hooks().OnTurn(context.Background(), &domain.TurnEvent{
		Intent:   domain.IntentHelp,
		Outcome:  domain.OutcomeCompleted,
		Duration: 3 * time.Millisecond,
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tablebot_turns_total{intent="help",outcome="completed"} 1`)
	assert.Contains(t, w.Body.String(), "tablebot_turn_duration_seconds")
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	hooks := observability.LoggingHooks(logger)

	hooks.OnRemoteReturn(context.Background(), &domain.RemoteEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		Op:        domain.OpCreateBooking,
		IsError:   true,
		Err:       errors.New("boom"),
	})

	out := buf.String()
	assert.Contains(t, out, `"msg":"remote call failed"`)
	assert.Contains(t, out, `"op":"create_booking"`)
	assert.Contains(t, out, `"session_id":"s1"`)
}
