package factory

import (
	"errors"
	"fmt"

	"github.com/mikey/mail-ingress/internal/adapters/ingress"
	"github.com/mikey/mail-ingress/internal/allowlist"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/metrics"
	"github.com/mikey/mail-ingress/internal/ports"
	"go.uber.org/zap"
)

// IngressFactory creates mail ingresses based on configuration
type IngressFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIngressFactory creates a new ingress factory
func NewIngressFactory(cfg *config.Config, logger *zap.Logger) *IngressFactory {
	return &IngressFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateIngress creates the ingress selected by server.ingress_type
func (f *IngressFactory) CreateIngress(handler ingress.MailHandler, m *metrics.Metrics) (ports.MailIngress, error) {
	serverCfg := f.cfg.GetServer()
	parser := ingress.NewParser(f.logger)
	checker := allowlist.NewChecker(serverCfg.AllowedSenderDomains, f.logger)

	switch serverCfg.IngressType {
	case "http":
		token := f.cfg.GetIngestion().APIToken
		if token == "" {
			return nil, errors.New("ingestion.api_token is required for the http ingress")
		}
		return ingress.NewHTTPIngress(
			handler,
			parser,
			checker,
			m,
			f.logger,
			serverCfg.ListenAddress,
			token,
			serverCfg.MaxBodyBytes,
		), nil
	case "smtp":
		return ingress.NewSMTPIngress(handler, parser, checker, m, f.logger, ingress.SMTPSettings{
			ListenAddr:      serverCfg.SMTPListenAddress,
			Domain:          serverCfg.SMTPDomain,
			MaxMessageBytes: serverCfg.SMTPMaxMessageBytes,
			MaxRecipients:   serverCfg.SMTPMaxRecipients,
		}), nil
	case "cli":
		return nil, errors.New("the cli ingress only runs from mail-archive")
	default:
		return nil, fmt.Errorf("unsupported ingress type: %s", serverCfg.IngressType)
	}
}

// CreateCLIIngress creates the one-shot CLI ingress
func (f *IngressFactory) CreateCLIIngress(handler ingress.MailHandler) *ingress.CLIIngress {
	return ingress.NewCLIIngress(handler, ingress.NewParser(f.logger), f.logger, nil, f.cfg.GetBool("cli.verbose"))
}
