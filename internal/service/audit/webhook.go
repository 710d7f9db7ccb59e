package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrWebhookNotConfigured = errors.New("audit webhook url is not configured")

type webhookRequest struct {
	CampaignName string `json:"campaign_name"`
}

// Webhook posts audit requests to the external workflow endpoint.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	tr := &http.Transport{
		IdleConnTimeout:       120 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &Webhook{
		url: url,
		client: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
	}
}

// Trigger sends the campaign name and returns the response status. Only
// 200 counts as success; any other status is returned with an error.
func (w *Webhook) Trigger(ctx context.Context, campaignName string) (int, error) {
	if w.url == "" {
		return 0, ErrWebhookNotConfigured
	}

	body, err := json.Marshal(webhookRequest{CampaignName: campaignName})
	if err != nil {
		return 0, fmt.Errorf("failed to encode webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call audit webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("audit webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (w *Webhook) close() {
	w.client.CloseIdleConnections()
}
