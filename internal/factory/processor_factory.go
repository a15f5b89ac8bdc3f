package factory

import (
	"context"

	"github.com/mikey/mail-ingress/internal/adapters/postprocess"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// ProcessorFactory creates the post-processor chain
type ProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	runner postprocess.Runner
}

// NewProcessorFactory creates a new processor factory running real tools
func NewProcessorFactory(cfg *config.Config, logger *zap.Logger) *ProcessorFactory {
	return &ProcessorFactory{
		cfg:    cfg,
		logger: logger,
		runner: postprocess.NewExecRunner(),
	}
}

// CreateProcessors builds the configured chain and health-checks every tool.
// A missing tool is a startup error.
func (f *ProcessorFactory) CreateProcessors() ([]core.PostProcessor, error) {
	names := f.cfg.GetPostProcess().Processors

	chain, err := postprocess.NewChain(names, f.runner, f.logger)
	if err != nil {
		return nil, err
	}

	if err := core.CheckProcessors(context.Background(), chain, f.logger); err != nil {
		return nil, err
	}

	f.logger.Info("Initialized post-processors", zap.Strings("processors", names))
	return chain, nil
}
