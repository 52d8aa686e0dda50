package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tablebot/internal/config"
	"github.com/aretw0/tablebot/internal/logging"
	"github.com/aretw0/tablebot/pkg/adapters/fakeapi"
	"github.com/aretw0/tablebot/pkg/adapters/memory"
	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func newTestConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:            baseURL,
			Token:              testToken,
			Restaurant:         fakeapi.DefaultRestaurant,
			Channel:            domain.DefaultChannel,
			CancellationReason: domain.DefaultCancellationReason,
			Timeout:            5 * time.Second,
			Retries:            0,
			Breaker:            config.BreakerConfig{Failures: 3, MaxRequests: 1, Timeout: time.Second},
		},
		HTTP: config.HTTPConfig{RateLimit: 100, RateBurst: 100},
		Log:  config.LogConfig{Level: "error", Format: "text"},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	api := httptest.NewServer(fakeapi.New(fakeapi.WithToken(testToken)).Handler())
	t.Cleanup(api.Close)

	app, err := NewApp(context.Background(), newTestConfig(api.URL), logging.NewNop(), AppOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_RequiresToken(t *testing.T) {
	cfg := newTestConfig("http://localhost:1")
	cfg.API.Token = ""
	_, err := NewApp(context.Background(), cfg, logging.NewNop(), AppOptions{})
	assert.ErrorIs(t, err, config.ErrMissingToken)
}

func TestRunChat_JSONTranscriptIsPersisted(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	in := strings.NewReader(strings.Join([]string{
		`{"utterance": "I'd like to book a table"}`,
		`"2025-08-10"`,
		`19:00:00 for 2 people`,
		`quit`,
	}, "\n") + "\n")
	var out bytes.Buffer

	err := RunChat(ctx, app, ChatOptions{SessionID: "chat-1", JSON: true, In: in, Out: &out})
	require.NoError(t, err)

	var replies []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var line struct {
			Reply string `json:"reply"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line), scanner.Text())
		replies = append(replies, line.Reply)
	}
	require.Len(t, replies, 4)
	assert.Contains(t, replies[2], "Booking confirmed")
	assert.Equal(t, "Bye!", replies[3])

	stored, err := app.Sessions.Load(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Turns)
	assert.NotEmpty(t, stored.LastBookingReference)
	assert.Equal(t, domain.IntentNone, stored.ActiveIntent)
}

func TestRunChat_ResumeAndFresh(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunChat(ctx, app, ChatOptions{
		SessionID: "resume", Headless: true,
		In: strings.NewReader("Is there availability on 2025-08-10?\n"), Out: &out,
	}))

	out.Reset()
	require.NoError(t, RunChat(ctx, app, ChatOptions{
		SessionID: "resume",
		In:        strings.NewReader("4\n"), Out: &out,
	}))
	assert.Contains(t, out.String(), "Resuming session 'resume'")
	assert.Contains(t, out.String(), "Available times on 2025-08-10")

	out.Reset()
	require.NoError(t, RunChat(ctx, app, ChatOptions{
		SessionID: "resume", Fresh: true,
		In: strings.NewReader(""), Out: &out,
	}))
	assert.Contains(t, out.String(), "Session 'resume' active.")
}

func TestSessionAdmin(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, ListSessions(ctx, store, &out))
	assert.Contains(t, out.String(), "No active sessions found.")

	s := domain.NewSession("alpha")
	s.SwitchIntent(domain.IntentBook)
	s.SetSlot(domain.SlotVisitDate, "2025-08-10")
	require.NoError(t, store.Save(ctx, "alpha", s))
	require.NoError(t, store.Save(ctx, "beta", domain.NewSession("beta")))

	out.Reset()
	require.NoError(t, ListSessions(ctx, store, &out))
	assert.Contains(t, out.String(), "- alpha")
	assert.Contains(t, out.String(), "- beta")

	out.Reset()
	require.NoError(t, InspectSession(ctx, store, "alpha", FormatJSON, false, &out))
	assert.Contains(t, out.String(), `"active_intent": "book"`)

	out.Reset()
	require.NoError(t, InspectSession(ctx, store, "alpha", FormatYAML, false, &out))
	assert.Contains(t, out.String(), "active_intent: book")
	assert.Contains(t, out.String(), "visit_date:")
	assert.Contains(t, out.String(), "2025-08-10")

	out.Reset()
	require.NoError(t, InspectSession(ctx, store, "alpha", FormatMermaid, false, &out))
	assert.Contains(t, out.String(), "class book current;")

	assert.Error(t, InspectSession(ctx, store, "alpha", "toml", false, &out))
	assert.ErrorIs(t, InspectSession(ctx, store, "missing", FormatJSON, false, &out), domain.ErrSessionNotFound)

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, store, []string{"alpha"}, &out))
	assert.Contains(t, out.String(), "Removed session 'alpha'")

	require.NoError(t, RemoveAllSessions(ctx, store, &out))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	mem, err := NewStorage(ctx, config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, mem.Store)
	assert.Nil(t, mem.Locker)

	mr := miniredis.RunT(t)
	shared, err := NewStorage(ctx, config.RedisConfig{URL: "redis://" + mr.Addr(), TTL: time.Hour, Prefix: "test:"})
	require.NoError(t, err)
	defer shared.Close()
	assert.NotNil(t, shared.Locker)

	require.NoError(t, shared.Store.Save(ctx, "r1", domain.NewSession("r1")))
	assert.True(t, mr.Exists("test:r1"))

	_, err = NewStorage(ctx, config.RedisConfig{URL: "redis://127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestServeHandler(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(NewServeHandler(app))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sessions/web/turns", "application/json", strings.NewReader(`{"utterance":"help"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Contains(t, body.String(), `tablebot_turns_total{intent="help",outcome="completed"} 1`)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- ListenAndServe(ctx, srv, logging.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestNewStorage_Encrypted(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	storage, err := NewStorage(ctx, config.RedisConfig{
		URL:           "redis://" + mr.Addr(),
		Prefix:        "enc:",
		EncryptionKey: "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=",
	})
	require.NoError(t, err)
	defer storage.Close()

	s := domain.NewSession("e1")
	s.SwitchIntent(domain.IntentBook)
	s.SetSlot(domain.SlotFirstName, "Ada")
	require.NoError(t, storage.Store.Save(ctx, "e1", s))

	raw, err := mr.Get("enc:e1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Ada")

	var out bytes.Buffer
	require.NoError(t, InspectSession(ctx, storage.Store, "e1", FormatJSON, false, &out))
	assert.Contains(t, out.String(), `"first_name": "Ada"`)

	out.Reset()
	require.NoError(t, InspectSession(ctx, storage.Store, "e1", FormatJSON, true, &out))
	assert.NotContains(t, out.String(), "Ada")
	assert.Contains(t, out.String(), `"first_name": "***"`)

	_, err = NewStorage(ctx, config.RedisConfig{EncryptionKey: "c2hvcnQ="})
	assert.Error(t, err)
}
