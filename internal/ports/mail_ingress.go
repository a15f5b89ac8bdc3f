package ports

// MailIngress defines the interface for transports that feed mail to the handler
type MailIngress interface {
	// Start starts accepting mail
	Start() error

	// Stop stops accepting mail
	Stop() error
}
