package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWebhookClient() *WebhookClient {
	return NewWebhookClient("https://example.com/toast", 5*time.Second,
		observability.NewMetricsForTesting(), discardLogger())
}

func highLevel(t *testing.T) domain.Level {
	t.Helper()
	level, err := domain.LevelFor("HIGH")
	require.NoError(t, err)
	return level
}

func TestNewAlertMessage_Envelope(t *testing.T) {
	ts := time.Date(2026, time.January, 12, 8, 0, 0, 0, time.UTC)
	level := highLevel(t)

	msg := NewAlertMessage(level, ts, "https://example.com/toast")

	want := Message{
		Attachments: []Attachment{{
			Color:      "#FF821D",
			AuthorName: "French Toast Alert System",
			AuthorLink: "https://example.com/toast",
			Title:      "4 Slices / High",
			Text:       level.Text,
			ThumbURL:   "https://www.universalhub.com/images/2007/frenchtoastorange.jpg",
			Timestamp:  ts.Unix(),
		}},
	}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestWebhookClient_PostAlert_SendsJSONBody(t *testing.T) {
	ts := time.Date(2026, time.January, 12, 8, 0, 0, 0, time.UTC)

	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	code, err := testWebhookClient().PostAlert(context.Background(), srv.URL, highLevel(t), ts)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "4 Slices / High", got.Attachments[0].Title)
	assert.Equal(t, ts.Unix(), got.Attachments[0].Timestamp)
}

func TestWebhookClient_PostAlert_ReturnsStatusCode(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusGone} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		code, err := testWebhookClient().PostAlert(context.Background(), srv.URL, highLevel(t), time.Now())
		require.NoError(t, err)
		assert.Equal(t, status, code)
		srv.Close()
	}
}

func TestWebhookClient_PostAlert_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := testWebhookClient().PostAlert(context.Background(), srv.URL, highLevel(t), time.Now())
	require.Error(t, err)

	var delivery *domain.DeliveryError
	assert.ErrorAs(t, err, &delivery)
}

func TestOAuthClient_Access_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "client-secret", r.Form.Get("client_secret"))
		assert.Equal(t, "https://example.com/validate", r.Form.Get("redirect_uri"))
		assert.Equal(t, "auth-code", r.Form.Get("code"))

		_, _ = w.Write([]byte(`{
			"ok": true,
			"team_id": "T123",
			"incoming_webhook": {"channel_id": "C456", "url": "https://hooks.slack.com/services/T123/B1/x"}
		}`))
	}))
	defer srv.Close()

	c := NewOAuthClient("client-id", "client-secret", "https://example.com/validate", 5*time.Second, discardLogger())
	c.accessURL = srv.URL

	reg, err := c.Access(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, domain.Registration{
		TeamID:     "T123",
		ChannelID:  "C456",
		WebhookURL: "https://hooks.slack.com/services/T123/B1/x",
	}, reg)
}

func TestOAuthClient_Access_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "invalid_code"}`))
	}))
	defer srv.Close()

	c := NewOAuthClient("id", "secret", "https://example.com/validate", 5*time.Second, discardLogger())
	c.accessURL = srv.URL

	_, err := c.Access(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_code")
}

func TestOAuthClient_Access_NoWebhookGranted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true, "team_id": "T123"}`))
	}))
	defer srv.Close()

	c := NewOAuthClient("id", "secret", "https://example.com/validate", 5*time.Second, discardLogger())
	c.accessURL = srv.URL

	_, err := c.Access(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incoming webhook")
}

func TestAuthorizeURL(t *testing.T) {
	u := AuthorizeURL("https://slack.com/oauth/authorize", "client-id", "https://example.com/validate", "state-token")
	assert.Contains(t, u, "https://slack.com/oauth/authorize?")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "scope=incoming-webhook")
	assert.Contains(t, u, "state=state-token")
}

func TestStateTokens_RoundTrip(t *testing.T) {
	s := NewStateTokens("secret", "client-id", clockwork.NewRealClock())

	token, err := s.Generate()
	require.NoError(t, err)
	assert.NoError(t, s.Validate(token))
}

func TestStateTokens_Expired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 12, 8, 0, 0, 0, time.UTC))
	s := NewStateTokens("secret", "client-id", clock)

	token, err := s.Generate()
	require.NoError(t, err)

	clock.Advance(61 * time.Minute)
	assert.ErrorIs(t, s.Validate(token), ErrStateExpired)
}

func TestStateTokens_ForgedSignature(t *testing.T) {
	issuer := NewStateTokens("secret-a", "client-id", clockwork.NewRealClock())
	verifier := NewStateTokens("secret-b", "client-id", clockwork.NewRealClock())

	token, err := issuer.Generate()
	require.NoError(t, err)
	assert.ErrorIs(t, verifier.Validate(token), ErrStateInvalid)
}

func TestStateTokens_WrongClientID(t *testing.T) {
	issuer := NewStateTokens("secret", "other-client", clockwork.NewRealClock())
	verifier := NewStateTokens("secret", "client-id", clockwork.NewRealClock())

	token, err := issuer.Generate()
	require.NoError(t, err)
	assert.ErrorIs(t, verifier.Validate(token), ErrStateInvalid)
}

func TestStateTokens_Garbage(t *testing.T) {
	s := NewStateTokens("secret", "client-id", clockwork.NewRealClock())
	assert.ErrorIs(t, s.Validate("not-a-token"), ErrStateInvalid)
}
