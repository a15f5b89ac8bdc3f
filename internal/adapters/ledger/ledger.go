package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a content key has no ledger entry
var ErrNotFound = errors.New("ledger entry not found")

// Ledger is an archive ledger with a background retention task
type Ledger interface {
	core.ArchiveLedger
	Stop()
}

// cleanupLoop runs cleanup every freq until stopCh is closed. A non-positive
// freq disables the loop.
func cleanupLoop(freq time.Duration, stopCh <-chan struct{}, cleanup func(context.Context) error, logger *zap.Logger) {
	if freq <= 0 {
		return
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up archive ledger", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
