package factory

import (
	"fmt"

	"github.com/mikey/mail-ingress/internal/adapters/webhook"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates the chat notifier
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier creates the webhook notifier. It returns a nil notifier when
// notifications are disabled.
func (f *NotifierFactory) CreateNotifier() (core.Notifier, error) {
	notifyCfg := f.cfg.GetNotify()
	policy, err := core.ParseNotifyPolicy(notifyCfg.Policy)
	if err != nil {
		return nil, err
	}
	if !notifyCfg.Enabled || policy == core.NotifyNever {
		f.logger.Info("Notifications are disabled")
		return nil, nil
	}

	webhookCfg := f.cfg.GetWebhook()
	if webhookCfg.URL == "" {
		f.logger.Warn("No webhook URL configured, notifications are disabled")
		return nil, nil
	}

	timeout, err := f.cfg.GetDuration("webhook.timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid webhook timeout: %w", err)
	}

	return webhook.New(webhook.Config{
		URL:     webhookCfg.URL,
		Token:   webhookCfg.Token,
		Network: webhookCfg.Network,
		Channel: webhookCfg.Channel,
		Timeout: timeout,
	}, f.logger)
}
