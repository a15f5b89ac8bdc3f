package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// sqlLedger holds what the SQLite and MySQL ledgers share. Timestamps are
// stored as unix seconds.
type sqlLedger struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	upsertQuery string
	now         func() time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func newSQLLedger(db *sql.DB, upsertQuery string, logger *zap.Logger, retention, cleanupFreq time.Duration) *sqlLedger {
	l := &sqlLedger{
		db:          db,
		logger:      logger,
		retention:   retention,
		upsertQuery: upsertQuery,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}

	go cleanupLoop(cleanupFreq, l.stopCh, l.Cleanup, logger)

	return l
}

// Record inserts an entry or folds it into the existing row for the same key
func (l *sqlLedger) Record(ctx context.Context, entry *core.ArchiveRecord) error {
	_, err := l.db.ExecContext(ctx, l.upsertQuery,
		entry.Key,
		entry.ContentType,
		entry.Size,
		entry.Sender,
		entry.Subject,
		entry.FirstSeen.Unix(),
		entry.LastSeen.Unix(),
		max(entry.SeenCount, 1),
	)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// Lookup returns the entry for key
func (l *sqlLedger) Lookup(ctx context.Context, key string) (*core.ArchiveRecord, error) {
	var (
		entry     core.ArchiveRecord
		firstSeen int64
		lastSeen  int64
	)

	err := l.db.QueryRowContext(ctx, `
		SELECT content_key, content_type, size, sender, subject, first_seen, last_seen, seen_count
		FROM archive_ledger
		WHERE content_key = ?
	`, key).Scan(
		&entry.Key,
		&entry.ContentType,
		&entry.Size,
		&entry.Sender,
		&entry.Subject,
		&firstSeen,
		&lastSeen,
		&entry.SeenCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	entry.FirstSeen = time.Unix(firstSeen, 0)
	entry.LastSeen = time.Unix(lastSeen, 0)
	return &entry, nil
}

// Cleanup removes entries not seen within the retention window
func (l *sqlLedger) Cleanup(ctx context.Context) error {
	if l.retention <= 0 {
		return nil
	}

	cutoff := l.now().Add(-l.retention).Unix()
	result, err := l.db.ExecContext(ctx, `
		DELETE FROM archive_ledger
		WHERE last_seen < ?
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		l.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		l.logger.Debug("Cleaned up expired ledger entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (l *sqlLedger) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		if err := l.db.Close(); err != nil {
			l.logger.Error("Failed to close ledger database", zap.Error(err))
		}
	})
}
