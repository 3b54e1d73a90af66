package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rwanews/internal/logger"
	"rwanews/internal/retry"
)

// apiBase is a var so tests can point the client at a local server.
var apiBase = "https://api.telegram.org/bot"

// Client is a thin Telegram Bot API wrapper: send/edit/delete a message in
// the target channel and check channel membership. Consumed by the app that
// wraps the pipeline, never by the pipeline itself.
type Client struct {
	token    string
	chatID   string
	http     *http.Client
	retryCfg retry.Config
}

func New(token, chatID string) *Client {
	return &Client{
		token:  token,
		chatID: chatID,
		http:   &http.Client{Timeout: 30 * time.Second},
		retryCfg: retry.Config{
			MaxAttempts: 3,
			Delay:       2 * time.Second,
			Backoff:     true,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	var result json.RawMessage
	err = retry.Do(ctx, c.retryCfg, func() error {
		url := fmt.Sprintf("%s%s/%s", apiBase, c.token, method)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		var parsed apiResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if !parsed.OK {
			return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, parsed.Description)
		}

		result = parsed.Result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SendMessage posts text to the channel and returns the message ID, which
// Edit and Delete need.
func (c *Client) SendMessage(ctx context.Context, text string) (int64, error) {
	result, err := c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return 0, err
	}

	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("decode message id: %w", err)
	}

	logger.Info("message sent to channel", "message_id", msg.MessageID)
	return msg.MessageID, nil
}

func (c *Client) EditMessage(ctx context.Context, messageID int64, text string) error {
	_, err := c.call(ctx, "editMessageText", map[string]interface{}{
		"chat_id":    c.chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	})
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	_, err := c.call(ctx, "deleteMessage", map[string]interface{}{
		"chat_id":    c.chatID,
		"message_id": messageID,
	})
	return err
}

// VerifyChannelAccess checks the bot is a member of the target channel with
// a status that allows posting.
func (c *Client) VerifyChannelAccess(ctx context.Context, botID int64) error {
	result, err := c.call(ctx, "getChatMember", map[string]interface{}{
		"chat_id": c.chatID,
		"user_id": botID,
	})
	if err != nil {
		return err
	}

	var member struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(result, &member); err != nil {
		return fmt.Errorf("decode chat member: %w", err)
	}

	switch member.Status {
	case "administrator", "creator", "member":
		return nil
	default:
		return fmt.Errorf("bot has no posting access to channel: status %q", member.Status)
	}
}
