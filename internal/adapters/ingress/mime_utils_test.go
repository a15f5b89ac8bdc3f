package ingress

import (
	"bytes"
	"encoding/base64"
	"testing"

	"go.uber.org/zap"
)

func TestParseMultipart(t *testing.T) {
	parsed, err := NewParser(zap.NewNop()).Parse([]byte(multipartMail()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Subject != "Café photos" {
		t.Errorf("subject: got %q", parsed.Subject)
	}
	if parsed.From != "alice@example.com" {
		t.Errorf("from: got %q", parsed.From)
	}
	if len(parsed.Attachments) != 2 {
		t.Fatalf("attachments: got %d, want 2", len(parsed.Attachments))
	}

	photo := parsed.Attachments[0]
	if photo.Filename != "photo.jpg" || photo.ContentType != "image/jpeg" || !bytes.Equal(photo.Content, testJPEG) {
		t.Errorf("unexpected first attachment: %q %q %v", photo.Filename, photo.ContentType, photo.Content)
	}

	doc := parsed.Attachments[1]
	if doc.Filename != "doc.pdf" || doc.ContentType != "application/pdf" || !bytes.Equal(doc.Content, testPDF) {
		t.Errorf("unexpected second attachment: %q %q", doc.Filename, doc.ContentType)
	}
}

func TestParseInlineImageWithoutFilename(t *testing.T) {
	raw := crlf(
		"From: carol@example.com",
		"Subject: Screenshot",
		"MIME-Version: 1.0",
		`Content-Type: multipart/related; boundary="REL"`,
		"",
		"--REL",
		"Content-Type: text/html; charset=utf-8",
		"",
		`<img src="cid:shot">`,
		"--REL",
		"Content-Type: image/jpeg",
		"Content-ID: <shot>",
		"Content-Transfer-Encoding: base64",
		"",
		base64.StdEncoding.EncodeToString(testJPEG),
		"--REL--",
		"",
	)

	parsed, err := NewParser(zap.NewNop()).Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Attachments) != 1 {
		t.Fatalf("attachments: got %d, want 1", len(parsed.Attachments))
	}
	if !bytes.Equal(parsed.Attachments[0].Content, testJPEG) {
		t.Errorf("inline image content mismatch")
	}
}

func TestParsePlainTextHasNoAttachments(t *testing.T) {
	parsed, err := NewParser(zap.NewNop()).Parse([]byte(plainMail()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Attachments) != 0 {
		t.Errorf("attachments: got %d, want 0", len(parsed.Attachments))
	}
	if parsed.Subject != "Just text" || parsed.From != "bob@example.com" {
		t.Errorf("headers: %q %q", parsed.Subject, parsed.From)
	}
}

func TestParsedMailMessageSender(t *testing.T) {
	parsed := &ParsedMail{
		Subject:     "s",
		From:        "header@example.com",
		Attachments: []ParsedAttachment{{Filename: "a", ContentType: "image/png", Content: []byte("x")}},
	}

	if got := parsed.Message("envelope@example.com").Sender; got != "envelope@example.com" {
		t.Errorf("transport sender should win, got %q", got)
	}
	msg := parsed.Message("  ")
	if msg.Sender != "header@example.com" {
		t.Errorf("header sender fallback, got %q", msg.Sender)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "a" || msg.Subject != "s" {
		t.Errorf("unexpected conversion: %+v", msg)
	}
}
