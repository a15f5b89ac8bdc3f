package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-ingress/internal/adapters/ledger"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"github.com/mikey/mail-ingress/internal/factory"
	"github.com/mikey/mail-ingress/internal/logging"
	"github.com/mikey/mail-ingress/internal/metrics"
	"github.com/mikey/mail-ingress/internal/ports"
	"github.com/mikey/mail-ingress/internal/utils"
)

// BuildContainer creates and configures a dependency injection container.
// An empty configFile searches the default config locations.
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		if configFile != "" {
			return config.NewFromFile(configFile)
		}
		return config.New()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideArchiving(container); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func(h *core.MailHandler) *metrics.Metrics {
		return metrics.New(h)
	}); err != nil {
		return nil, err
	}

	// Register mail ingress
	if err := container.Provide(factory.NewIngressFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IngressFactory, h *core.MailHandler, m *metrics.Metrics) (ports.MailIngress, error) {
		return f.CreateIngress(h, m)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideArchiving registers everything the mail handler needs, and the
// handler itself. It expects *config.Config and *zap.Logger to be provided.
func provideArchiving(container *dig.Container) error {
	// Register factories
	for _, constructor := range []any{
		factory.NewStoreFactory,
		factory.NewNotifierFactory,
		factory.NewProcessorFactory,
		factory.NewLedgerFactory,
		factory.NewHandlerFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Register object store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ObjectStore, error) {
		return f.CreateObjectStore()
	}); err != nil {
		return err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (core.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return err
	}

	// Register post-processor chain
	if err := container.Provide(func(f *factory.ProcessorFactory) ([]core.PostProcessor, error) {
		return f.CreateProcessors()
	}); err != nil {
		return err
	}

	// Register archive ledger
	if err := container.Provide(func(f *factory.LedgerFactory) (ledger.Ledger, error) {
		return f.CreateLedger()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.HandlerFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register mail handler
	if err := container.Provide(func(
		f *factory.HandlerFactory,
		store core.ObjectStore,
		notifier core.Notifier,
		archive ledger.Ledger,
		processors []core.PostProcessor,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
	) (*core.MailHandler, error) {
		logger.Debug("Creating mail handler", zap.Int("processors", len(processors)))
		return f.CreateMailHandler(store, notifier, archive, processors, textProcessor)
	}); err != nil {
		return err
	}

	return nil
}
