package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// MemoryLedger is an in-memory implementation of the ArchiveLedger interface
type MemoryLedger struct {
	entries   map[string]*core.ArchiveRecord
	mu        sync.RWMutex
	logger    *zap.Logger
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewMemoryLedger creates a new in-memory ledger
func NewMemoryLedger(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryLedger {
	l := &MemoryLedger{
		entries:   make(map[string]*core.ArchiveRecord),
		logger:    logger,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}

	go cleanupLoop(cleanupFreq, l.stopCh, l.Cleanup, logger)

	return l
}

// Record inserts an entry or folds it into the existing one for the same key
func (l *MemoryLedger) Record(_ context.Context, entry *core.ArchiveRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.entries[entry.Key]
	if !ok {
		stored := *entry
		if stored.SeenCount == 0 {
			stored.SeenCount = 1
		}
		l.entries[entry.Key] = &stored
		return nil
	}

	if entry.LastSeen.After(existing.LastSeen) {
		existing.LastSeen = entry.LastSeen
	}
	existing.SeenCount += max(entry.SeenCount, 1)
	return nil
}

// Lookup returns a copy of the entry for key
func (l *MemoryLedger) Lookup(_ context.Context, key string) (*core.ArchiveRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := *entry
	return &out, nil
}

// Cleanup removes entries not seen within the retention window
func (l *MemoryLedger) Cleanup(_ context.Context) error {
	if l.retention <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.retention)
	expiredCount := 0

	for key, entry := range l.entries {
		if entry.LastSeen.Before(cutoff) {
			delete(l.entries, key)
			expiredCount++
		}
	}

	l.logger.Debug("Cleaned up expired ledger entries", zap.Int("expired_count", expiredCount))
	return nil
}

// Len returns the number of entries
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Stop stops the background cleanup task
func (l *MemoryLedger) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
