package ingress

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/mikey/mail-ingress/internal/core"
)

type fakeHandler struct {
	mu       sync.Mutex
	messages []*core.Message
}

func (h *fakeHandler) Handle(_ context.Context, msg *core.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

func (h *fakeHandler) Stats() core.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	var s core.Stats
	for _, m := range h.messages {
		if len(m.Attachments) == 0 {
			continue
		}
		s.MailsProcessed++
		for _, a := range m.Attachments {
			s.AttachmentsProcessed++
			s.AttachmentBytesProcessed += uint64(a.Size())
			s.Uploaded++
		}
	}
	return s
}

func (h *fakeHandler) received() []*core.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*core.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

var testJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x02, 0x03}

var testPDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

func multipartMail() string {
	return crlf(
		"From: Alice <alice@example.com>",
		"To: archive@example.com",
		"Subject: =?UTF-8?Q?Caf=C3=A9_photos?=",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Hello, see attached.",
		"--BOUNDARY",
		"Content-Type: image/jpeg",
		`Content-Disposition: attachment; filename="photo.jpg"`,
		"Content-Transfer-Encoding: base64",
		"",
		base64.StdEncoding.EncodeToString(testJPEG),
		"--BOUNDARY",
		`Content-Type: application/pdf; name="doc.pdf"`,
		"Content-Disposition: inline",
		"Content-Transfer-Encoding: base64",
		"",
		base64.StdEncoding.EncodeToString(testPDF),
		"--BOUNDARY--",
		"",
	)
}

func plainMail() string {
	return crlf(
		"From: bob@example.com",
		"Subject: Just text",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"No attachments here.",
		"",
	)
}
