package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mail-ingress/internal/adapters/ledger"
	"github.com/mikey/mail-ingress/internal/core"
	"github.com/mikey/mail-ingress/internal/di"
	"github.com/mikey/mail-ingress/internal/ports"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	mailIngress ports.MailIngress,
	handler *core.MailHandler,
	archive ledger.Ledger,
) error {
	defer logger.Sync()

	// Start the ingress
	if err := mailIngress.Start(); err != nil {
		logger.Error("Failed to start ingress", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the ingress
	if err := mailIngress.Stop(); err != nil {
		logger.Error("Failed to stop ingress", zap.Error(err))
	}

	if archive != nil {
		archive.Stop()
	}

	stats := handler.Stats()
	logger.Info("Shutdown complete",
		zap.Uint64("mails_processed", stats.MailsProcessed),
		zap.Uint64("attachments_processed", stats.AttachmentsProcessed),
		zap.Uint64("attachment_bytes_processed", stats.AttachmentBytesProcessed),
		zap.Uint64("uploaded", stats.Uploaded),
		zap.Uint64("cached", stats.Cached))
	return nil
}
