package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
)

// pollTimeout is the server-side long-poll window for getUpdates.
const pollTimeout = 30 * time.Second

// Telegram implements service.Transport over the Telegram Bot API.
// The chat ID doubles as the user ID throughout the pipeline.
type Telegram struct {
	httpClient *http.Client
	baseURL    string
	offset     int64
}

// NewTelegram creates a Telegram transport authenticated with the bot token.
func NewTelegram(token string) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	return &Telegram{
		baseURL: "https://api.telegram.org/bot" + token,
		httpClient: &http.Client{
			// Must outlast the long-poll window.
			Timeout: pollTimeout + 10*time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Name returns the platform name this transport registers under.
func (t *Telegram) Name() string {
	return "telegram"
}

// Send delivers text to the chat identified by userID.
func (t *Telegram) Send(ctx context.Context, userID, text string) error {
	body, err := t.call(ctx, "sendMessage", url.Values{
		"chat_id": {userID},
		"text":    {text},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", userID, err)
	}

	var response struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse send response: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("telegram rejected message: %s", response.Description)
	}
	return nil
}

// CheckAuth verifies the bot token via getMe and returns the bot username.
func (t *Telegram) CheckAuth(ctx context.Context) (string, error) {
	body, err := t.call(ctx, "getMe", nil)
	if err != nil {
		return "", err
	}

	var response struct {
		OK     bool `json:"ok"`
		Result struct {
			Username string `json:"username"`
		} `json:"result"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse getMe response: %w", err)
	}
	if !response.OK {
		return "", fmt.Errorf("telegram auth failed: %s", response.Description)
	}
	return response.Result.Username, nil
}

// Poll long-polls getUpdates until ctx is done, passing each text message
// to handle. Transient API failures are logged and polling continues.
func (t *Telegram) Poll(ctx context.Context, handle func(model.InboundMessage)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := t.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			common.LogError(err, "telegram poll failed, backing off", nil)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= t.offset {
				t.offset = u.UpdateID + 1
			}
			if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
				continue
			}
			handle(model.InboundMessage{
				ReceivedAt: time.Unix(u.Message.Date, 0),
				Platform:   t.Name(),
				UserID:     strconv.FormatInt(u.Message.Chat.ID, 10),
				MessageID:  strconv.FormatInt(u.UpdateID, 10),
				Text:       u.Message.Text,
			})
		}
	}
}

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64  `json:"message_id"`
		Date      int64  `json:"date"`
		Text      string `json:"text"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

func (t *Telegram) getUpdates(ctx context.Context) ([]telegramUpdate, error) {
	body, err := t.call(ctx, "getUpdates", url.Values{
		"offset":  {strconv.FormatInt(t.offset, 10)},
		"timeout": {strconv.Itoa(int(pollTimeout.Seconds()))},
	})
	if err != nil {
		return nil, err
	}

	var response struct {
		OK          bool             `json:"ok"`
		Result      []telegramUpdate `json:"result"`
		Description string           `json:"description"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	if !response.OK {
		return nil, fmt.Errorf("telegram getUpdates failed: %s", response.Description)
	}
	return response.Result, nil
}

func (t *Telegram) call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, common.ErrRateLimit
	}
	if resp.StatusCode >= 500 {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: true,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
