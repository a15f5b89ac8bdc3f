package s3store

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mikey/mail-ingress/internal/config"
	"go.uber.org/zap"
)

// Factory creates S3 object stores
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new S3 store factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore loads the AWS configuration and creates the object store.
// Credentials come from the default chain, optionally narrowed to a profile.
func (f *Factory) CreateStore(ctx context.Context) (*ObjectStore, error) {
	s3Cfg := f.cfg.GetS3()
	if s3Cfg.BucketName == "" {
		return nil, errors.New("s3.bucket_name is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if s3Cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s3Cfg.Region))
	}
	if s3Cfg.ProfileName != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(s3Cfg.ProfileName))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if s3Cfg.EndpointURL != "" {
		endpoint := s3Cfg.EndpointURL
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if s3Cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	f.logger.Info("Using S3 object store",
		zap.String("bucket", s3Cfg.BucketName),
		zap.String("region", s3Cfg.Region),
		zap.String("endpoint", s3Cfg.EndpointURL))

	return NewObjectStore(s3.NewFromConfig(awsCfg, s3Opts...), s3Cfg.BucketName, s3Cfg.ACL, f.logger), nil
}
