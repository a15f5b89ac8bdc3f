package ingress

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/mail-ingress/internal/allowlist"
	"github.com/mikey/mail-ingress/internal/metrics"
	"go.uber.org/zap"
)

const ingressSMTP = "smtp"

// SMTPSettings configures the SMTP listener
type SMTPSettings struct {
	ListenAddr      string
	Domain          string
	MaxMessageBytes int64
	MaxRecipients   int
}

// SMTPIngress accepts mail over SMTP, for use as a delivery target of an MTA
type SMTPIngress struct {
	handler   MailHandler
	parser    *Parser
	allowlist *allowlist.Checker
	metrics   *metrics.Metrics
	logger    *zap.Logger
	settings  SMTPSettings
	server    *smtp.Server
}

// NewSMTPIngress creates a new SMTP ingress
func NewSMTPIngress(
	handler MailHandler,
	parser *Parser,
	checker *allowlist.Checker,
	m *metrics.Metrics,
	logger *zap.Logger,
	settings SMTPSettings,
) *SMTPIngress {
	if settings.Domain == "" {
		settings.Domain = "localhost"
	}
	if settings.MaxMessageBytes <= 0 {
		settings.MaxMessageBytes = DefaultMaxBodyBytes
	}
	if settings.MaxRecipients <= 0 {
		settings.MaxRecipients = 50
	}

	f := &SMTPIngress{
		handler:   handler,
		parser:    parser,
		allowlist: checker,
		metrics:   m,
		logger:    logger,
		settings:  settings,
	}

	f.server = smtp.NewServer(&smtpBackend{ingress: f})
	f.server.Addr = settings.ListenAddr
	f.server.Domain = settings.Domain
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = settings.MaxMessageBytes
	f.server.MaxRecipients = settings.MaxRecipients

	return f
}

// Start starts the SMTP listener
func (f *SMTPIngress) Start() error {
	l, err := net.Listen("tcp", f.settings.ListenAddr)
	if err != nil {
		return err
	}
	f.logger.Info("SMTP ingress starting", zap.String("address", l.Addr().String()))

	go f.Serve(l)
	return nil
}

// Serve accepts connections on l until the ingress is stopped
func (f *SMTPIngress) Serve(l net.Listener) {
	if err := f.server.Serve(l); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
		f.logger.Error("SMTP server error", zap.Error(err))
	}
}

// Stop stops the SMTP listener
func (f *SMTPIngress) Stop() error {
	return f.server.Close()
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingress *SMTPIngress
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remote := ""
	if c != nil && c.Conn() != nil {
		remote = c.Conn().RemoteAddr().String()
	}
	return &smtpSession{
		ingress: b.ingress,
		remote:  remote,
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingress    *SMTPIngress
	remote     string
	sender     string
	recipients []string
}

var errSenderNotAllowed = &smtp.SMTPError{
	Code:         550,
	EnhancedCode: smtp.EnhancedCode{5, 7, 1},
	Message:      "Sender domain not accepted",
}

var errUnparsable = &smtp.SMTPError{
	Code:         554,
	EnhancedCode: smtp.EnhancedCode{5, 6, 0},
	Message:      "Could not parse message",
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the envelope sender
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.ingress.allowlist.IsAllowed(from) {
		s.ingress.logger.Info("Rejecting mail from sender outside the allowlist",
			zap.String("sender", from),
			zap.String("remote", s.remote))
		s.ingress.metrics.IncRejected(ingressSMTP, "sender_not_allowed")
		return errSenderNotAllowed
	}
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data parses the message and hands it to the mail handler
func (s *smtpSession) Data(r io.Reader) error {
	logger := s.ingress.logger.With(zap.String("sender", s.sender), zap.String("remote", s.remote))

	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	parsed, err := s.ingress.parser.Parse(raw)
	if err != nil {
		logger.Error("Failed to parse email message", zap.Error(err))
		s.ingress.metrics.IncRejected(ingressSMTP, "parse_error")
		return errUnparsable
	}

	s.ingress.metrics.IncReceived(ingressSMTP)
	s.ingress.handler.Handle(context.Background(), parsed.Message(s.sender))

	logger.Info("Processed email",
		zap.Strings("recipients", s.recipients),
		zap.Int("size", len(raw)))
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
