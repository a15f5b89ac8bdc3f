package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContentKey(t *testing.T) {
	// sha256("hello")
	const want = DefaultKeyPrefix + "/LPJNul-wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ"

	if got := ContentKey(DefaultKeyPrefix, []byte("hello")); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := ContentKey(DefaultKeyPrefix+"/", []byte("hello")); got != want {
		t.Errorf("trailing slash: got %q, want %q", got, want)
	}
	if got := ContentKey("", []byte("hello")); strings.Contains(got, "/") {
		t.Errorf("empty prefix produced %q", got)
	}
}

func TestContentKeyFromFileMatchesBytes(t *testing.T) {
	content := []byte("some attachment content that is hashed")
	path := filepath.Join(t.TempDir(), "a.bin")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ContentKeyFromFile(DefaultKeyPrefix, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := ContentKey(DefaultKeyPrefix, content); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	encoded := strings.TrimPrefix(got, DefaultKeyPrefix+"/")
	if len(encoded) != 43 || strings.ContainsAny(encoded, "+/=") {
		t.Errorf("key is not unpadded base64url: %q", encoded)
	}
}

func TestContentKeyFromFileMissing(t *testing.T) {
	if _, err := ContentKeyFromFile(DefaultKeyPrefix, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestContentDisposition(t *testing.T) {
	inline := []string{"image/jpeg", "image/png", "image/heic", "image/webp", "image/gif",
		"video/mp4", "video/mpeg", "video/ogg", "video/webm"}
	for _, ct := range inline {
		if got := ContentDisposition(ct); got != "inline" {
			t.Errorf("%s: got %q, want inline", ct, got)
		}
	}

	for _, ct := range []string{"application/pdf", "text/plain", "video/x-quicktime", "video/quicktime", "application/octet-stream", ""} {
		if got := ContentDisposition(ct); got != "attachment" {
			t.Errorf("%s: got %q, want attachment", ct, got)
		}
	}
}

func TestPublicURL(t *testing.T) {
	if got := PublicURL("https://pub.rwx.im/", "~meta/mails/v2/abc"); got != "https://pub.rwx.im/~meta/mails/v2/abc" {
		t.Errorf("got %q", got)
	}
}

func TestParseNotifyPolicy(t *testing.T) {
	tests := map[string]NotifyPolicy{"": NotifyNew, "new": NotifyNew, "Always": NotifyAlways, " never ": NotifyNever}
	for in, want := range tests {
		got, err := ParseNotifyPolicy(in)
		if err != nil || got != want {
			t.Errorf("%q: got %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseNotifyPolicy("sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
