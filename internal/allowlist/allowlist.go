package allowlist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a sender address may submit mail for archiving
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new allowlist checker. An empty domain list allows every sender.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		normalized[strings.TrimPrefix(domain, "@")] = struct{}{}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sender allowlist", zap.Int("domains", len(normalized)))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Enabled reports whether any domain restriction is configured
func (c *Checker) Enabled() bool {
	return c != nil && len(c.domains) > 0
}

// IsAllowed checks the domain of from against the allowlist. from may be a
// bare address or a full "Name <addr>" form.
func (c *Checker) IsAllowed(from string) bool {
	if !c.Enabled() {
		return true
	}

	domain := Domain(from)
	if domain == "" {
		return false
	}

	if _, ok := c.domains[domain]; ok {
		if c.logger != nil {
			c.logger.Debug("Sender domain is allowed",
				zap.String("domain", domain),
				zap.String("email", from))
		}
		return true
	}
	return false
}

// Domain returns the lower-cased domain of an address, or "" if it has none
func Domain(from string) string {
	from = strings.TrimSpace(from)
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}

	at := strings.LastIndex(from, "@")
	if at < 0 || at == len(from)-1 {
		return ""
	}
	return strings.ToLower(from[at+1:])
}
