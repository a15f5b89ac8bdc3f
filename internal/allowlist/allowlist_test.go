package allowlist

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsAllowed(t *testing.T) {
	c := NewChecker([]string{" Example.com ", "@rwx.im", ""}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"alice@example.com", true},
		{"Alice <alice@EXAMPLE.com>", true},
		{"bob@rwx.im", true},
		{"mallory@evil.org", false},
		{"no-at-sign", false},
		{"trailing@", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.IsAllowed(tt.from); got != tt.want {
			t.Errorf("IsAllowed(%q): got %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestEmptyAllowsEveryone(t *testing.T) {
	c := NewChecker(nil, nil)
	if c.Enabled() {
		t.Error("empty checker should be disabled")
	}
	if !c.IsAllowed("anyone@anywhere.test") || !c.IsAllowed("") {
		t.Error("empty checker should allow every sender")
	}

	var nilChecker *Checker
	if !nilChecker.IsAllowed("x@y.z") {
		t.Error("nil checker should allow every sender")
	}
}

func TestDomain(t *testing.T) {
	tests := map[string]string{
		"a@b.c":              "b.c",
		"\"A\" <a@Sub.B.c>":  "sub.b.c",
		"odd@local@host.net": "host.net",
		"none":               "",
	}
	for in, want := range tests {
		if got := Domain(in); got != want {
			t.Errorf("Domain(%q): got %q, want %q", in, got, want)
		}
	}
}
