package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteLedger is a SQLite implementation of the ArchiveLedger interface
type SQLiteLedger struct {
	*sqlLedger
}

// NewSQLiteLedger opens (and if needed creates) the ledger database at dbPath
func NewSQLiteLedger(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS archive_ledger (
			content_key TEXT PRIMARY KEY,
			content_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			sender TEXT NOT NULL,
			subject TEXT NOT NULL,
			first_seen INTEGER NOT NULL,
			last_seen INTEGER NOT NULL,
			seen_count INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_last_seen ON archive_ledger(last_seen)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	upsert := `
		INSERT INTO archive_ledger (content_key, content_type, size, sender, subject, first_seen, last_seen, seen_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_key) DO UPDATE SET
			last_seen = MAX(archive_ledger.last_seen, excluded.last_seen),
			seen_count = archive_ledger.seen_count + excluded.seen_count
	`

	return &SQLiteLedger{sqlLedger: newSQLLedger(db, upsert, logger, retention, cleanupFreq)}, nil
}
