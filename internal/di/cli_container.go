package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-ingress/internal/adapters/ingress"
	"github.com/mikey/mail-ingress/internal/config"
	"github.com/mikey/mail-ingress/internal/core"
	"github.com/mikey/mail-ingress/internal/factory"
	"github.com/mikey/mail-ingress/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Storage flags
	Bucket      string
	Region      string
	Profile     string
	EndpointURL string
	PathStyle   bool
	PublicURL   string

	// Pipeline flags
	Processors string
	NoNotify   bool

	// Input flags
	InputFile  string
	Sender     string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Storage flags
	flag.StringVar(&flags.Bucket, "bucket", "", "S3 bucket to archive attachments into")
	flag.StringVar(&flags.Region, "region", "", "AWS region of the bucket")
	flag.StringVar(&flags.Profile, "profile", "", "AWS shared config profile")
	flag.StringVar(&flags.EndpointURL, "endpoint-url", "", "Custom S3 endpoint for S3-compatible providers")
	flag.BoolVar(&flags.PathStyle, "path-style", false, "Use path-style bucket addressing")
	flag.StringVar(&flags.PublicURL, "public-url", "https://pub.rwx.im", "Public base URL of the bucket")

	// Pipeline flags
	flag.StringVar(&flags.Processors, "processors", "exiftran,exiftool", "Comma-separated post-processor chain")
	flag.BoolVar(&flags.NoNotify, "no-notify", true, "Do not send chat notifications")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "-", "Input email file (- for stdin)")
	flag.StringVar(&flags.Sender, "sender", "", "Envelope sender (defaults to the From header)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideArchiving(container); err != nil {
		return nil, err
	}

	// Register CLI ingress
	if err := container.Provide(factory.NewIngressFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IngressFactory, h *core.MailHandler) *ingress.CLIIngress {
		return f.CreateCLIIngress(h)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("cli.verbose", flags.Verbose)
	v.Set("ledger.enabled", false)

	// Set storage
	v.Set("s3.bucket_name", flags.Bucket)
	v.Set("s3.region", flags.Region)
	v.Set("s3.profile_name", flags.Profile)
	v.Set("s3.endpoint_url", flags.EndpointURL)
	v.Set("s3.use_path_style", flags.PathStyle)
	v.Set("s3.public_url", flags.PublicURL)

	// Set pipeline
	v.Set("postprocess.processors", splitList(flags.Processors))
	v.Set("notify.enabled", !flags.NoNotify)

	return config.NewFromViper(v)
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
