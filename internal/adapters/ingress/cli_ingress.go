package ingress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// CLIIngress archives the attachments of a single message read from a file or stdin
type CLIIngress struct {
	handler MailHandler
	parser  *Parser
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCLIIngress creates a new CLI ingress writing its report to out (stdout when nil)
func NewCLIIngress(handler MailHandler, parser *Parser, logger *zap.Logger, out io.Writer, verbose bool) *CLIIngress {
	if out == nil {
		out = os.Stdout
	}
	return &CLIIngress{
		handler: handler,
		parser:  parser,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// ProcessFile archives the message stored at path; "-" reads stdin
func (f *CLIIngress) ProcessFile(ctx context.Context, path, sender string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open email file: %w", err)
		}
		defer file.Close()
		r = file
	}
	return f.Process(ctx, r, sender)
}

// Process parses one raw message from r, hands it to the mail handler and
// prints a summary
func (f *CLIIngress) Process(ctx context.Context, r io.Reader, sender string) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	parsed, err := f.parser.Parse(raw)
	if err != nil {
		f.logger.Error("Failed to parse email", zap.Error(err))
		return err
	}
	msg := parsed.Message(sender)

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", msg.Sender)
	fmt.Fprintf(f.out, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(f.out, "Attachments: %d\n", len(msg.Attachments))
	if f.verbose {
		for i, a := range msg.Attachments {
			fmt.Fprintf(f.out, "  [%d] %q %s, %d bytes\n", i, a.Filename, a.ContentType, a.Size())
		}
	}

	before := f.handler.Stats()
	start := time.Now()
	f.handler.Handle(ctx, msg)
	duration := time.Since(start)
	after := f.handler.Stats()

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Uploaded: %d\n", after.Uploaded-before.Uploaded)
	fmt.Fprintf(f.out, "Already archived: %d\n", after.Cached-before.Cached)
	fmt.Fprintf(f.out, "Dropped: %d\n", after.Dropped-before.Dropped)
	fmt.Fprintf(f.out, "Failed: %d\n", after.Failed-before.Failed)
	fmt.Fprintf(f.out, "Bytes processed: %d\n", after.AttachmentBytesProcessed-before.AttachmentBytesProcessed)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return nil
}

// Start is a no-op for the CLI ingress
func (f *CLIIngress) Start() error {
	return nil
}

// Stop is a no-op for the CLI ingress
func (f *CLIIngress) Stop() error {
	return nil
}
