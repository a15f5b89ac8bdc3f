package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gojektech/heimdall/httpclient"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout
const DefaultTimeout = 10 * time.Second

// maxResponseLog bounds the response body kept for debug logging
const maxResponseLog = 4096

// Config configures the webhook notifier
type Config struct {
	URL     string
	Token   string
	Network string
	Channel string
	Timeout time.Duration
}

// Payload is the JSON body posted to the webhook endpoint
type Payload struct {
	Method string `json:"method"`
	Params Params `json:"params"`
}

// Params addresses a chat message to a network and channel
type Params struct {
	Network string `json:"network"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// StatusError is returned for non-2xx HTTP responses
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Notifier posts chat messages to a webhook. Delivery is attempted once.
type Notifier struct {
	config Config
	client *httpclient.Client
	logger *zap.Logger
}

var _ core.Notifier = (*Notifier)(nil)

// New creates a webhook notifier. Returns an error if the URL is empty.
func New(cfg Config, logger *zap.Logger) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook notifier requires a URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Notifier{
		config: cfg,
		client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(cfg.Timeout),
			httpclient.WithRetryCount(0),
		),
		logger: logger,
	}, nil
}

// Notify sends message to the configured channel
func (n *Notifier) Notify(ctx context.Context, message string) error {
	body, err := json.Marshal(Payload{
		Method: "message",
		Params: Params{
			Network: n.config.Network,
			Channel: n.config.Channel,
			Message: message,
		},
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.config.Token)
	}

	n.logger.Debug("Sending webhook notification",
		zap.String("url", n.config.URL),
		zap.String("channel", n.config.Channel))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseLog))
	_, _ = io.Copy(io.Discard, resp.Body)

	n.logger.Debug("Webhook response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
