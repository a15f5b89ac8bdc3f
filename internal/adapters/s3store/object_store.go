package s3store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// ObjectAPI is the subset of the S3 client used by the store
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectStore is an implementation of the ObjectStore interface backed by an S3 bucket
type ObjectStore struct {
	client ObjectAPI
	bucket string
	acl    types.ObjectCannedACL
	logger *zap.Logger
}

var _ core.ObjectStore = (*ObjectStore)(nil)

// NewObjectStore creates a new S3 object store. An empty acl leaves the
// bucket default in place.
func NewObjectStore(client ObjectAPI, bucket string, acl string, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{
		client: client,
		bucket: bucket,
		acl:    types.ObjectCannedACL(acl),
		logger: logger,
	}
}

// ObjectExists checks whether key is already present in the bucket
func (s *ObjectStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, &core.StoreError{Op: "head", Key: key, Err: err}
}

// PutObject streams the file described by input into the bucket
func (s *ObjectStore) PutObject(ctx context.Context, input *core.PutObjectInput) error {
	f, err := os.Open(input.Path)
	if err != nil {
		return &core.StoreError{Op: "put", Key: input.Key, Err: fmt.Errorf("open %s: %w", input.Path, err)}
	}
	defer f.Close()

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(input.Key),
		Body:          f,
		ContentLength: aws.Int64(input.Size),
	}
	if input.ContentType != "" {
		params.ContentType = aws.String(input.ContentType)
	}
	if input.ContentDisposition != "" {
		params.ContentDisposition = aws.String(input.ContentDisposition)
	}
	if s.acl != "" {
		params.ACL = s.acl
	}

	if _, err := s.client.PutObject(ctx, params); err != nil {
		return &core.StoreError{Op: "put", Key: input.Key, Err: err}
	}

	s.logger.Debug("Stored object",
		zap.String("bucket", s.bucket),
		zap.String("key", input.Key),
		zap.Int64("size", input.Size))
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
