package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikey/mail-ingress/internal/utils"
	"go.uber.org/zap"
)

// maxHeaderLength bounds subject and sender text echoed into notifications
const maxHeaderLength = 200

// HandlerSettings holds the static settings of a MailHandler
type HandlerSettings struct {
	KeyPrefix    string
	PublicURL    string
	ScratchDir   string
	NotifyPolicy NotifyPolicy
}

// MailHandler drives the attachments of one mail through
// sniff, post-processing, hashing, dedup check, upload and notification.
// Handle calls are fully serialized.
type MailHandler struct {
	mu sync.Mutex

	mailsProcessed           atomic.Uint64
	attachmentsProcessed     atomic.Uint64
	attachmentBytesProcessed atomic.Uint64
	uploaded                 atomic.Uint64
	cached                   atomic.Uint64
	dropped                  atomic.Uint64
	failed                   atomic.Uint64

	processors    []PostProcessor
	store         ObjectStore
	notifier      Notifier
	ledger        ArchiveLedger
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	settings      HandlerSettings
}

// NewMailHandler creates a new mail handler. notifier and ledger may be nil.
func NewMailHandler(
	store ObjectStore,
	notifier Notifier,
	ledger ArchiveLedger,
	processors []PostProcessor,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	settings HandlerSettings,
) *MailHandler {
	if settings.KeyPrefix == "" {
		settings.KeyPrefix = DefaultKeyPrefix
	}
	if settings.NotifyPolicy == "" {
		settings.NotifyPolicy = NotifyNew
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}

	// The chain is fixed for the handler's lifetime
	chain := make([]PostProcessor, len(processors))
	copy(chain, processors)

	return &MailHandler{
		processors:    chain,
		store:         store,
		notifier:      notifier,
		ledger:        ledger,
		textProcessor: textProcessor,
		logger:        logger,
		settings:      settings,
	}
}

// Handle archives every attachment of msg. It never fails outward: errors are
// logged and reflected in the counters only.
func (h *MailHandler) Handle(ctx context.Context, msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if msg == nil || len(msg.Attachments) == 0 {
		sender := ""
		if msg != nil {
			sender = msg.Sender
		}
		h.logger.Info("Skipping email as it doesn't contain any attachments",
			zap.String("sender", sender))
		return
	}

	subject := msg.Subject

	for i, attachment := range msg.Attachments {
		h.processAttachment(ctx, i, attachment, subject, msg.Sender)

		h.attachmentsProcessed.Add(1)
		h.attachmentBytesProcessed.Add(uint64(attachment.Size()))
	}

	h.mailsProcessed.Add(1)
}

// processAttachment runs one attachment through the pipeline. The scratch file
// is removed on every return path.
func (h *MailHandler) processAttachment(ctx context.Context, index int, attachment Attachment, subject, sender string) {
	contentType := utils.SniffContentType(attachment.Content)
	logger := h.logger.With(
		zap.Int("attachment", index),
		zap.String("filename", attachment.Filename),
		zap.String("content_type", contentType),
		zap.Int("size", attachment.Size()))

	scratch, err := utils.NewScratchFile(h.settings.ScratchDir, attachment.Content)
	if err != nil {
		logger.Error("Could not write attachment to disk", zap.Error(err))
		h.failed.Add(1)
		return
	}
	defer func() {
		if err := scratch.Remove(); err != nil {
			logger.Warn("Could not remove scratch file", zap.Error(err))
		}
	}()

	logger.Debug("Processing attachment", zap.String("path", scratch.Path()))

	if err := RunChain(ctx, h.processors, contentType, scratch, logger); err != nil {
		logger.Error("Dropping attachment after post-processing failure", zap.Error(err))
		h.dropped.Add(1)
		return
	}

	upload, err := h.UploadAttachment(ctx, scratch.Path(), contentType, subject, sender)
	if err != nil {
		logger.Error("Could not upload attachment",
			zap.Error(err),
			zap.String("subject", subject),
			zap.String("sender", sender))
		h.failed.Add(1)
		return
	}

	if upload.Cached {
		h.cached.Add(1)
	} else {
		h.uploaded.Add(1)
	}

	h.recordArchive(ctx, upload, contentType, attachment.Size(), logger)

	if h.notifier == nil || !h.settings.NotifyPolicy.ShouldNotify(upload) {
		return
	}
	if err := h.notifier.Notify(ctx, h.FormatNotification(upload)); err != nil {
		logger.Error("Could not send notification message",
			zap.Error(&NotifyError{Err: err}),
			zap.String("key", upload.Key))
	}
}

// UploadAttachment computes the content key of the file at path and uploads it
// unless the store already holds that key. An existence probe error is
// treated as unknown and the upload is attempted.
func (h *MailHandler) UploadAttachment(
	ctx context.Context,
	path string,
	contentType string,
	subject string,
	sender string,
) (*UploadResult, error) {
	key, err := ContentKeyFromFile(h.settings.KeyPrefix, path)
	if err != nil {
		return nil, fmt.Errorf("could not compute content key: %w", err)
	}

	result := &UploadResult{
		Key:     key,
		Sender:  sender,
		Subject: subject,
	}

	exists, err := h.store.ObjectExists(ctx, key)
	switch {
	case err != nil:
		h.logger.Warn("Existence check failed, uploading anyway",
			zap.String("key", key),
			zap.Error(err))
	case exists:
		h.logger.Debug("Skipping upload of object as it already exists in the bucket",
			zap.String("key", key))
		result.Cached = true
		return result, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", path, err)
	}

	h.logger.Debug("Uploading object", zap.String("key", key), zap.Int64("size", info.Size()))

	input := &PutObjectInput{
		Key:                key,
		Path:               path,
		Size:               info.Size(),
		ContentType:        contentType,
		ContentDisposition: ContentDisposition(contentType),
	}
	if err := h.store.PutObject(ctx, input); err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return nil, err
		}
		return nil, &StoreError{Op: "put", Key: key, Err: err}
	}

	return result, nil
}

// FormatNotification renders the chat message announcing an archived attachment
func (h *MailHandler) FormatNotification(upload *UploadResult) string {
	sender := h.textProcessor.NormalizeHeader(upload.Sender, maxHeaderLength)
	if sender == "" {
		sender = "unknown"
	}
	url := PublicURL(h.settings.PublicURL, upload.Key)

	if subject := h.textProcessor.NormalizeHeader(upload.Subject, maxHeaderLength); subject != "" {
		return fmt.Sprintf("“%s” from %s: %s", subject, sender, url)
	}
	return fmt.Sprintf("Mail received from %s: %s", sender, url)
}

// recordArchive writes the ledger entry for an archived attachment. Ledger
// failures are logged only.
func (h *MailHandler) recordArchive(ctx context.Context, upload *UploadResult, contentType string, size int, logger *zap.Logger) {
	if h.ledger == nil {
		return
	}

	now := time.Now()
	entry := &ArchiveRecord{
		Key:         upload.Key,
		ContentType: contentType,
		Size:        int64(size),
		Sender:      upload.Sender,
		Subject:     upload.Subject,
		FirstSeen:   now,
		LastSeen:    now,
		SeenCount:   1,
	}
	if err := h.ledger.Record(ctx, entry); err != nil {
		logger.Warn("Failed to update archive ledger", zap.Error(err), zap.String("key", upload.Key))
	}
}

// Stats returns a snapshot of the counters
func (h *MailHandler) Stats() Stats {
	return Stats{
		MailsProcessed:           h.mailsProcessed.Load(),
		AttachmentsProcessed:     h.attachmentsProcessed.Load(),
		AttachmentBytesProcessed: h.attachmentBytesProcessed.Load(),
		Uploaded:                 h.uploaded.Load(),
		Cached:                   h.cached.Load(),
		Dropped:                  h.dropped.Load(),
		Failed:                   h.failed.Load(),
	}
}
