package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLLedger is a MySQL implementation of the ArchiveLedger interface
type MySQLLedger struct {
	*sqlLedger
}

// NewMySQLLedger connects to the database at dsn and creates the ledger table
func NewMySQLLedger(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLLedger, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS archive_ledger (
			content_key VARCHAR(255) PRIMARY KEY,
			content_type VARCHAR(255) NOT NULL,
			size BIGINT NOT NULL,
			sender VARCHAR(512) NOT NULL,
			subject TEXT NOT NULL,
			first_seen BIGINT NOT NULL,
			last_seen BIGINT NOT NULL,
			seen_count BIGINT NOT NULL,
			INDEX idx_last_seen (last_seen)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	upsert := `
		INSERT INTO archive_ledger (content_key, content_type, size, sender, subject, first_seen, last_seen, seen_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			last_seen = GREATEST(last_seen, VALUES(last_seen)),
			seen_count = seen_count + VALUES(seen_count)
	`

	return &MySQLLedger{sqlLedger: newSQLLedger(db, upsert, logger, retention, cleanupFreq)}, nil
}
