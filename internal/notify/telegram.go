package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/detect"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSink delivers opportunities to a chat via the Telegram Bot API.
type TelegramSink struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
	logger  *zap.Logger
}

// NewTelegramSink creates a Telegram sink for the given bot token and chat
// id.
func NewTelegramSink(token, chatID string, logger *zap.Logger) *TelegramSink {
	return &TelegramSink{
		token:   token,
		chatID:  chatID,
		apiBase: telegramAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Notify posts the opportunity to the configured chat. A delivery failure is
// logged and reported to the caller; it never aborts the scan loop.
func (t *TelegramSink) Notify(ctx context.Context, opp *detect.Opportunity) bool {
	message := formatOpportunity(opp)

	err := t.send(ctx, message)
	if err != nil {
		DeliveryErrorsTotal.WithLabelValues(t.Name()).Inc()
		t.logger.Warn("telegram-send-failed",
			zap.String("opportunity-id", opp.ID),
			zap.Error(err))
		return false
	}

	opp.MarkNotified()
	DeliveriesTotal.WithLabelValues(t.Name()).Inc()
	return true
}

// send posts a message through the sendMessage API.
func (t *TelegramSink) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// NotifySummary posts the cycle roll-up message to the chat.
func (t *TelegramSink) NotifySummary(ctx context.Context, count int) bool {
	err := t.send(ctx, formatSummary(count))
	if err != nil {
		DeliveryErrorsTotal.WithLabelValues(t.Name()).Inc()
		t.logger.Warn("telegram-summary-failed",
			zap.Int("count", count),
			zap.Error(err))
		return false
	}

	DeliveriesTotal.WithLabelValues(t.Name()).Inc()
	return true
}

// Name returns the sink identifier.
func (t *TelegramSink) Name() string {
	return "telegram"
}
