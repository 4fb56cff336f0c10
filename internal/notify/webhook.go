package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cursed-focus/internal/game"

	"github.com/rs/zerolog/log"
)

// WebhookSink posts events to a Discord-compatible webhook. Delivery is best
// effort: failures are logged and dropped, never surfaced to the engine.
type WebhookSink struct {
	endpoint string
	client   *http.Client
}

func NewWebhookSink(endpoint string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (w *WebhookSink) Notify(ctx context.Context, ev game.Event) {
	title, body := describe(ev)
	payload := map[string]any{
		"embeds": []map[string]any{{
			"title":       title,
			"description": body,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	if err := w.postJSON(ctx, payload); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("webhook notify failed")
	}
}

func (w *WebhookSink) postJSON(ctx context.Context, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("push failed with status %d", resp.StatusCode)
}
