package core

import (
	"context"
)

// PostProcessor rewrites an attachment's scratch file in place through an external tool
type PostProcessor interface {
	// Name identifies the processor in logs and errors
	Name() string

	// Applicable reports whether the processor runs for the sniffed content type
	Applicable(contentType string) bool

	// Check probes whether the underlying tool is installed and runnable
	Check(ctx context.Context) (bool, error)

	// Apply processes the file at path and returns the path holding the result
	Apply(ctx context.Context, path string) (string, error)
}

// ObjectStore is the content-addressed remote store
type ObjectStore interface {
	// ObjectExists reports whether an object with the key exists.
	// A not-found response is (false, nil).
	ObjectExists(ctx context.Context, key string) (bool, error)

	// PutObject stores the file at input.Path under input.Key. Single attempt.
	PutObject(ctx context.Context, input *PutObjectInput) error
}

// Notifier sends a formatted text message to an external channel
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// ArchiveLedger keeps bookkeeping records of archived attachments
type ArchiveLedger interface {
	// Record upserts the record for entry.Key
	Record(ctx context.Context, entry *ArchiveRecord) error

	// Lookup retrieves the record for a content key
	Lookup(ctx context.Context, key string) (*ArchiveRecord, error)

	// Cleanup removes records past their retention
	Cleanup(ctx context.Context) error
}
