package core

import (
	"fmt"
	"strings"
	"time"
)

// Message represents a parsed email message. Sender is supplied by the
// transport (envelope or request metadata), not parsed from headers.
// Empty Subject or Sender means the value is unknown.
type Message struct {
	Subject     string
	Sender      string
	Attachments []Attachment
}

// Attachment represents one attachment as produced by the message parser
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Size returns the attachment size in bytes
func (a Attachment) Size() int {
	return len(a.Content)
}

// UploadResult represents the outcome of archiving one attachment
type UploadResult struct {
	Key     string
	Cached  bool
	Sender  string
	Subject string
}

// PutObjectInput describes a single object write to the store
type PutObjectInput struct {
	Key                string
	Path               string
	Size               int64
	ContentType        string
	ContentDisposition string
}

// Stats is a snapshot of the mail handler counters
type Stats struct {
	MailsProcessed           uint64
	AttachmentsProcessed     uint64
	AttachmentBytesProcessed uint64
	Uploaded                 uint64
	Cached                   uint64
	Dropped                  uint64
	Failed                   uint64
}

// ArchiveRecord is the ledger entry kept for every archived content key
type ArchiveRecord struct {
	Key         string
	ContentType string
	Size        int64
	Sender      string
	Subject     string
	FirstSeen   time.Time
	LastSeen    time.Time
	SeenCount   int64
}

// NotifyPolicy decides which archived attachments are announced
type NotifyPolicy string

const (
	// NotifyNew announces genuinely new uploads only
	NotifyNew NotifyPolicy = "new"
	// NotifyAlways announces cache hits as well
	NotifyAlways NotifyPolicy = "always"
	// NotifyNever disables notifications
	NotifyNever NotifyPolicy = "never"
)

// ShouldNotify reports whether an upload result is announced under the policy
func (p NotifyPolicy) ShouldNotify(result *UploadResult) bool {
	switch p {
	case NotifyAlways:
		return true
	case NotifyNever:
		return false
	default:
		return !result.Cached
	}
}

// ParseNotifyPolicy parses a policy name; the empty string selects NotifyNew
func ParseNotifyPolicy(name string) (NotifyPolicy, error) {
	switch p := NotifyPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return NotifyNew, nil
	case NotifyNew, NotifyAlways, NotifyNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown notify policy %q", name)
	}
}
