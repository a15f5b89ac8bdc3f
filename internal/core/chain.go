package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/mail-ingress/internal/utils"
	"go.uber.org/zap"
)

// CheckProcessors runs every processor's health check once, in order.
// A failed check or a check that reports false aborts with a ToolUnavailableError.
func CheckProcessors(ctx context.Context, processors []PostProcessor, logger *zap.Logger) error {
	logger.Debug("Checking post-processors", zap.Int("count", len(processors)))

	for _, p := range processors {
		ok, err := p.Check(ctx)
		if err != nil {
			var unavailable *ToolUnavailableError
			if errors.As(err, &unavailable) {
				return err
			}
			return &ToolUnavailableError{Tool: p.Name(), Err: err}
		}
		if !ok {
			return &ToolUnavailableError{Tool: p.Name()}
		}
		logger.Debug("Post-processor is available", zap.String("processor", p.Name()))
	}

	return nil
}

// ApplicableProcessors filters processors by content type, keeping registration order
func ApplicableProcessors(processors []PostProcessor, contentType string) []PostProcessor {
	var applicable []PostProcessor
	for _, p := range processors {
		if p.Applicable(contentType) {
			applicable = append(applicable, p)
		}
	}
	return applicable
}

// RunChain applies every applicable processor to the scratch file in order.
// The first failure stops the chain and is returned as a ProcessingFailedError;
// the caller must then drop the attachment.
func RunChain(
	ctx context.Context,
	processors []PostProcessor,
	contentType string,
	scratch *utils.ScratchFile,
	logger *zap.Logger,
) error {
	for _, p := range ApplicableProcessors(processors, contentType) {
		logger.Debug("Applying post-processor",
			zap.String("processor", p.Name()),
			zap.String("path", scratch.Path()),
			zap.String("content_type", contentType))

		next, err := p.Apply(ctx, scratch.Path())
		if err != nil {
			var failed *ProcessingFailedError
			if errors.As(err, &failed) {
				return err
			}
			return &ProcessingFailedError{Processor: p.Name(), Reason: "apply failed", Err: err}
		}
		if next == "" {
			return &ProcessingFailedError{Processor: p.Name(), Reason: "no output path"}
		}
		if err := scratch.Adopt(next); err != nil {
			return &ProcessingFailedError{
				Processor: p.Name(),
				Reason:    fmt.Sprintf("could not replace scratch file with %s", next),
				Err:       err,
			}
		}
	}
	return nil
}
