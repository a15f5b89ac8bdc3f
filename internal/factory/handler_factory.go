package factory

import (
	"github.com/mikey/mail-ingress/internal/adapters/ledger"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"github.com/mikey/mail-ingress/internal/utils"
	"go.uber.org/zap"
)

// HandlerFactory creates the mail handler and its text processor
type HandlerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(cfg *config.Config, logger *zap.Logger) *HandlerFactory {
	return &HandlerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *HandlerFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// Settings returns the handler settings from the configuration
func (f *HandlerFactory) Settings() (core.HandlerSettings, error) {
	policy, err := core.ParseNotifyPolicy(f.cfg.GetNotify().Policy)
	if err != nil {
		return core.HandlerSettings{}, err
	}

	s3Cfg := f.cfg.GetS3()
	return core.HandlerSettings{
		KeyPrefix:    s3Cfg.KeyPrefix,
		PublicURL:    s3Cfg.PublicURL,
		ScratchDir:   f.cfg.GetPostProcess().ScratchDir,
		NotifyPolicy: policy,
	}, nil
}

// CreateMailHandler creates the mail handler. notifier and archive may be nil.
func (f *HandlerFactory) CreateMailHandler(
	store core.ObjectStore,
	notifier core.Notifier,
	archive ledger.Ledger,
	processors []core.PostProcessor,
	textProcessor *utils.TextProcessor,
) (*core.MailHandler, error) {
	settings, err := f.Settings()
	if err != nil {
		return nil, err
	}

	var archiveLedger core.ArchiveLedger
	if archive != nil {
		archiveLedger = archive
	}

	return core.NewMailHandler(store, notifier, archiveLedger, processors, textProcessor, f.logger, settings), nil
}
