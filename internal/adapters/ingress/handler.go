package ingress

import (
	"context"

	"github.com/mikey/mail-ingress/internal/core"
)

// MailHandler is what every ingress hands parsed mail to
type MailHandler interface {
	Handle(ctx context.Context, msg *core.Message)
	Stats() core.Stats
}

var _ MailHandler = (*core.MailHandler)(nil)
