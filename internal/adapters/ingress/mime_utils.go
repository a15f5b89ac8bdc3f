package ingress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// Parser extracts subject, sender and attachments from raw RFC 5322 messages
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new message parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParsedMail is a parsed message before it is handed to the mail handler
type ParsedMail struct {
	Subject     string
	From        string
	Attachments []ParsedAttachment
}

// ParsedAttachment is one attachment-like part of a message
type ParsedAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Parse reads raw. Parts with an attachment disposition are attachments, and
// so are inline parts that are not text bodies (inline images and the like).
// A malformed part ends the walk; what was read so far is kept.
func (p *Parser) Parse(raw []byte) (*ParsedMail, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("could not parse message: %w", err)
	}
	defer mr.Close()

	parsed := &ParsedMail{
		Subject: subjectFromHeader(&mr.Header),
		From:    addressFromHeader(&mr.Header),
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (part == nil || !isRecoverable(err)) {
			p.logger.Warn("Failed to read message part", zap.Error(err))
			break
		}

		switch header := part.Header.(type) {
		case *mail.InlineHeader:
			mediaType, _, _ := header.ContentType()
			filename := inlineFilename(header)
			if filename == "" && (mediaType == "" || strings.HasPrefix(mediaType, "text/")) {
				continue
			}
			if att, ok := p.readAttachment(part, filename, mediaType); ok {
				parsed.Attachments = append(parsed.Attachments, att)
			}
		case *mail.AttachmentHeader:
			filename, _ := header.Filename()
			mediaType, _, _ := header.ContentType()
			if att, ok := p.readAttachment(part, filename, mediaType); ok {
				parsed.Attachments = append(parsed.Attachments, att)
			}
		}
	}

	return parsed, nil
}

func (p *Parser) readAttachment(part *mail.Part, filename, mediaType string) (ParsedAttachment, bool) {
	content, err := io.ReadAll(part.Body)
	if err != nil {
		p.logger.Warn("Failed to read attachment body",
			zap.String("filename", filename),
			zap.Error(err))
		return ParsedAttachment{}, false
	}
	return ParsedAttachment{
		Filename:    filename,
		ContentType: strings.ToLower(mediaType),
		Content:     content,
	}, true
}

// Message converts the parsed mail for the handler. A non-empty transport
// sender (envelope or request metadata) wins over the From header.
func (m *ParsedMail) Message(sender string) *core.Message {
	if sender = strings.TrimSpace(sender); sender == "" {
		sender = m.From
	}

	msg := &core.Message{
		Subject: m.Subject,
		Sender:  sender,
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, core.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     a.Content,
		})
	}
	return msg
}

func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

func subjectFromHeader(header *mail.Header) string {
	if subject, err := header.Subject(); err == nil {
		return strings.TrimSpace(subject)
	}
	return strings.TrimSpace(header.Get("Subject"))
}

func addressFromHeader(header *mail.Header) string {
	if list, err := header.AddressList("From"); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0].Address)
	}
	return strings.TrimSpace(header.Get("From"))
}

// inlineFilename returns the filename of an inline part from its disposition
// or, failing that, the Content-Type name parameter
func inlineFilename(header *mail.InlineHeader) string {
	if _, params, err := header.ContentDisposition(); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if _, params, err := header.ContentType(); err == nil {
		return params["name"]
	}
	return ""
}
