// Package telegram provides a notifier.Notifier implementation backed by the
// Telegram Bot API. The user ID doubles as the Telegram chat ID.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aimawatch/internal/notifier"
	"aimawatch/pkg/domain"
)

// Client talks to the Telegram Bot API and fulfills the notifier.Notifier
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the Bot API
	token      string       // token identifies the bot
	baseURL    string       // baseURL is the API origin, overridable in tests
}

// Send delivers the message to the user's Telegram chat via the sendMessage
// method.
func (c *Client) Send(ctx context.Context, userID domain.UserID, message string) error {
	// https://core.telegram.org/bots/api#sendmessage
	type sendMessageReq struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}
	bodyBytes, err := json.Marshal(sendMessageReq{ChatID: int64(userID), Text: message})
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token),
		strings.NewReader(string(bodyBytes)))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}

	var sendResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(b, &sendResp); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	if !sendResp.OK {
		return fmt.Errorf("send message failed: %s", sendResp.Description)
	}

	return nil
}

// Ensure Client conforms to the notifier.Notifier interface at compile time.
var _ notifier.Notifier = (*Client)(nil)

// New constructs a Client that uses the provided http.Client and bot token to
// interact with the Bot API at baseURL.
func New(httpClient *http.Client, token, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}
