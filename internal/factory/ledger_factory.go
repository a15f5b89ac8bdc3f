package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/mail-ingress/internal/adapters/ledger"
	"github.com/mikey/mail-ingress/internal/config"
	"go.uber.org/zap"
)

// LedgerFactory creates archive ledgers based on configuration
type LedgerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLedgerFactory creates a new ledger factory
func NewLedgerFactory(cfg *config.Config, logger *zap.Logger) *LedgerFactory {
	return &LedgerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLedger creates a ledger based on the configuration. It returns nil
// when the ledger is disabled.
func (f *LedgerFactory) CreateLedger() (ledger.Ledger, error) {
	ledgerCfg := f.cfg.GetLedger()
	if !ledgerCfg.Enabled {
		return nil, nil
	}

	retention, err := f.cfg.GetDuration("ledger.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid ledger retention: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("ledger.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid ledger cleanup frequency: %w", err)
	}

	switch ledgerCfg.Type {
	case "memory":
		return ledger.NewMemoryLedger(f.logger, retention, cleanupFreq), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(ledgerCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return ledger.NewSQLiteLedger(ledgerCfg.SQLitePath, f.logger, retention, cleanupFreq)
	case "mysql":
		return ledger.NewMySQLLedger(ledgerCfg.MySQLDSN, f.logger, retention, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", ledgerCfg.Type)
	}
}
