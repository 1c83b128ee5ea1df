package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"teduh_scraper/httputil"
	"teduh_scraper/models"
)

// WebhookSink posts publish summaries to an operator-configured URL.
type WebhookSink struct {
	client *http.Client
	url    string
}

func NewWebhookSink(client *http.Client, url string) *WebhookSink {
	return &WebhookSink{client: client, url: url}
}

func (w *WebhookSink) Report(ctx context.Context, result models.PublishResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(w.client, req, 3, 2*time.Second)
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("report rejected with status %d", resp.StatusCode)
	}
	return nil
}
