package factory

import (
	"context"

	"github.com/mikey/mail-ingress/internal/adapters/s3store"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates the content-addressed object store
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateObjectStore creates the S3 object store
func (f *StoreFactory) CreateObjectStore() (core.ObjectStore, error) {
	return s3store.NewFactory(f.cfg, f.logger).CreateStore(context.Background())
}
