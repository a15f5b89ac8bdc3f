package ingress

import (
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/mikey/mail-ingress/internal/allowlist"
	"github.com/mikey/mail-ingress/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func newTestSMTPSession(checker *allowlist.Checker) (*smtpSession, *fakeHandler, *metrics.Metrics) {
	handler := &fakeHandler{}
	m := metrics.New(nil)
	f := NewSMTPIngress(handler, NewParser(zap.NewNop()), checker, m, zap.NewNop(), SMTPSettings{ListenAddr: "127.0.0.1:0"})
	return &smtpSession{ingress: f}, handler, m
}

func TestSMTPSessionHandsMessageToHandler(t *testing.T) {
	s, handler, m := newTestSMTPSession(nil)

	if err := s.Mail("envelope@example.org", nil); err != nil {
		t.Fatalf("MAIL FROM: %v", err)
	}
	if err := s.Rcpt("archive@example.com", nil); err != nil {
		t.Fatalf("RCPT TO: %v", err)
	}
	if err := s.Data(strings.NewReader(multipartMail())); err != nil {
		t.Fatalf("DATA: %v", err)
	}

	got := handler.received()
	if len(got) != 1 {
		t.Fatalf("handled mails: got %d, want 1", len(got))
	}
	if got[0].Sender != "envelope@example.org" {
		t.Errorf("envelope sender should be used, got %q", got[0].Sender)
	}
	if len(got[0].Attachments) != 2 {
		t.Errorf("attachments: got %d, want 2", len(got[0].Attachments))
	}
	if v := testutil.ToFloat64(m.Received.WithLabelValues("smtp")); v != 1 {
		t.Errorf("received metric: got %v, want 1", v)
	}

	s.Reset()
	if s.sender != "" || len(s.recipients) != 0 {
		t.Error("reset did not clear the envelope")
	}
}

func TestSMTPSessionAllowlist(t *testing.T) {
	s, _, m := newTestSMTPSession(allowlist.NewChecker([]string{"example.com"}, nil))

	err := s.Mail("mallory@evil.test", nil)
	var smtpErr *smtp.SMTPError
	if !errors.As(err, &smtpErr) || smtpErr.Code != 550 {
		t.Fatalf("expected 550 rejection, got %v", err)
	}
	if v := testutil.ToFloat64(m.Rejected.WithLabelValues("smtp", "sender_not_allowed")); v != 1 {
		t.Errorf("rejected metric: got %v, want 1", v)
	}

	if err := s.Mail("alice@example.com", nil); err != nil {
		t.Errorf("allowed sender rejected: %v", err)
	}
}

func TestSMTPIngressStopWithoutStart(t *testing.T) {
	f := NewSMTPIngress(&fakeHandler{}, NewParser(zap.NewNop()), nil, nil, zap.NewNop(), SMTPSettings{})
	_ = f.Stop()
	if f.server.Domain != "localhost" || f.server.MaxRecipients != 50 {
		t.Errorf("defaults not applied: %q %d", f.server.Domain, f.server.MaxRecipients)
	}
}
