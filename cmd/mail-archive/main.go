package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/mail-ingress/internal/adapters/ingress"
	"github.com/mikey/mail-ingress/internal/adapters/ledger"
	"github.com/mikey/mail-ingress/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, flags *di.CLIFlags, cli *ingress.CLIIngress, archive ledger.Ledger) error {
	defer logger.Sync()
	if archive != nil {
		defer archive.Stop()
	}

	if flags.InputFile == "-" {
		logger.Info("Reading email from stdin")
	} else {
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	}

	return cli.ProcessFile(context.Background(), flags.InputFile, flags.Sender)
}
