package telegram_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"aimawatch/internal/notifier/telegram"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc) *telegram.Client {
	return telegram.New(&http.Client{Transport: fn}, "test-token", "https://api.telegram.org")
}

func TestClient_Send_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "api.telegram.org", r.URL.Host)
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			ChatID int64  `json:"chat_id"`
			Text   string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, int64(42), payload.ChatID)
		require.Equal(t, "hello", payload.Text)

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"ok":true,"result":{"message_id":1}}`)),
		}, nil
	})

	require.NoError(t, c.Send(context.Background(), 42, "hello"))
}

func TestClient_Send_apiRejection(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`)),
		}, nil
	})

	err := c.Send(context.Background(), 42, "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "blocked by the user")
}

func TestClient_Send_transportError(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})

	require.Error(t, c.Send(context.Background(), 42, "hello"))
}
