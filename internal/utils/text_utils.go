package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor provides utilities for processing header text before it is
// echoed into notifications
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "…"
}

// SanitizeUTF8 drops invalid UTF-8 sequences and control characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	changed := false
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				changed = true
				continue
			}
		}
		if unicode.IsControl(r) {
			changed = true
			if r == '\n' || r == '\r' || r == '\t' {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteRune(r)
	}

	if !changed {
		return text
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", b.Len()))

	return b.String()
}

// NormalizeHeader sanitizes, NFC-normalizes, trims and truncates a header value
func (tp *TextProcessor) NormalizeHeader(text string, maxSize int) string {
	sanitized := tp.SanitizeUTF8(text)
	normalized := norm.NFC.String(sanitized)
	return tp.TruncateText(strings.TrimSpace(normalized), maxSize)
}
