package factory

import (
	"path/filepath"
	"testing"

	"github.com/mikey/mail-ingress/internal/adapters/ingress"
	"github.com/mikey/mail-ingress/internal/adapters/webhook"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

func newConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestNotifierFactory(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantNil  bool
		wantErr  bool
	}{
		{"disabled", map[string]any{"notify.enabled": false, "webhook.url": "http://hook"}, true, false},
		{"never policy", map[string]any{"notify.policy": "never", "webhook.url": "http://hook"}, true, false},
		{"no url", map[string]any{"webhook.url": ""}, true, false},
		{"bad policy", map[string]any{"notify.policy": "sometimes"}, false, true},
		{"bad timeout", map[string]any{"webhook.url": "http://hook", "webhook.timeout": "soon"}, false, true},
		{"enabled", map[string]any{"webhook.url": "http://hook", "webhook.token": "t"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNotifierFactory(newConfig(tt.settings), zap.NewNop()).CreateNotifier()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (n == nil) != tt.wantNil {
				t.Fatalf("notifier: got %v, wantNil %v", n, tt.wantNil)
			}
			if n != nil {
				if _, ok := n.(*webhook.Notifier); !ok {
					t.Errorf("unexpected notifier type %T", n)
				}
			}
		})
	}
}

func TestLedgerFactory(t *testing.T) {
	l, err := NewLedgerFactory(newConfig(map[string]any{"ledger.enabled": false}), zap.NewNop()).CreateLedger()
	if err != nil || l != nil {
		t.Fatalf("disabled ledger: got %v, %v", l, err)
	}

	l, err = NewLedgerFactory(newConfig(map[string]any{"ledger.type": "memory"}), zap.NewNop()).CreateLedger()
	if err != nil || l == nil {
		t.Fatalf("memory ledger: got %v, %v", l, err)
	}
	l.Stop()

	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	l, err = NewLedgerFactory(newConfig(map[string]any{"ledger.type": "sqlite", "ledger.sqlite_path": path}), zap.NewNop()).CreateLedger()
	if err != nil || l == nil {
		t.Fatalf("sqlite ledger: got %v, %v", l, err)
	}
	l.Stop()

	if _, err := NewLedgerFactory(newConfig(map[string]any{"ledger.type": "redis"}), zap.NewNop()).CreateLedger(); err == nil {
		t.Error("expected error for an unsupported ledger type")
	}
}

func TestProcessorFactory(t *testing.T) {
	chain, err := NewProcessorFactory(newConfig(map[string]any{"postprocess.processors": []string{}}), zap.NewNop()).CreateProcessors()
	if err != nil || len(chain) != 0 {
		t.Fatalf("empty chain: got %v, %v", chain, err)
	}

	if _, err := NewProcessorFactory(newConfig(map[string]any{"postprocess.processors": []string{"imagemagick"}}), zap.NewNop()).CreateProcessors(); err == nil {
		t.Error("expected error for an unknown processor")
	}
}

func TestHandlerFactorySettings(t *testing.T) {
	f := NewHandlerFactory(newConfig(map[string]any{
		"notify.policy":           "always",
		"s3.public_url":           "https://cdn.example.com",
		"postprocess.scratch_dir": "/var/tmp",
	}), zap.NewNop())

	settings, err := f.Settings()
	if err != nil {
		t.Fatal(err)
	}
	want := core.HandlerSettings{
		KeyPrefix:    core.DefaultKeyPrefix,
		PublicURL:    "https://cdn.example.com",
		ScratchDir:   "/var/tmp",
		NotifyPolicy: core.NotifyAlways,
	}
	if settings != want {
		t.Errorf("got %+v, want %+v", settings, want)
	}

	h, err := f.CreateMailHandler(nil, nil, nil, nil, f.CreateTextProcessor())
	if err != nil || h == nil {
		t.Fatalf("handler: got %v, %v", h, err)
	}
}

func TestIngressFactory(t *testing.T) {
	handler, err := NewHandlerFactory(newConfig(nil), zap.NewNop()).CreateMailHandler(nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewIngressFactory(newConfig(map[string]any{"ingestion.api_token": ""}), zap.NewNop()).CreateIngress(handler, nil); err == nil {
		t.Error("expected error for http ingress without a token")
	}

	in, err := NewIngressFactory(newConfig(map[string]any{"ingestion.api_token": "t"}), zap.NewNop()).CreateIngress(handler, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := in.(*ingress.HTTPIngress); !ok {
		t.Errorf("default ingress: got %T", in)
	}

	in, err = NewIngressFactory(newConfig(map[string]any{"server.ingress_type": "smtp"}), zap.NewNop()).CreateIngress(handler, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := in.(*ingress.SMTPIngress); !ok {
		t.Errorf("smtp ingress: got %T", in)
	}

	if _, err := NewIngressFactory(newConfig(map[string]any{"server.ingress_type": "cli"}), zap.NewNop()).CreateIngress(handler, nil); err == nil {
		t.Error("expected error for the cli ingress in the service")
	}

	if _, err := NewIngressFactory(newConfig(map[string]any{"server.ingress_type": "milter"}), zap.NewNop()).CreateIngress(handler, nil); err == nil {
		t.Error("expected error for an unsupported ingress type")
	}
}
