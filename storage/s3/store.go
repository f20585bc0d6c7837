package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/feeddown/storage"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implements storage.Store for S3.
type Store struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	cfg      UploadConfig
}

// Option configures New and NewStore.
type Option func(*settings)

type settings struct {
	prefix  string
	region  string
	upload  UploadConfig
	cfgOpts []func(*config.LoadOptions) error
}

// WithPrefix sets the key prefix prepended to all names.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithRegion sets the AWS region used by New.
func WithRegion(region string) Option {
	return func(s *settings) {
		s.region = region
	}
}

// WithUploadConfig overrides the uploader settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(s *settings) {
		s.upload = cfg
	}
}

// WithConfigOptions passes extra options to config.LoadDefaultConfig.
func WithConfigOptions(opts ...func(*config.LoadOptions) error) Option {
	return func(s *settings) {
		s.cfgOpts = append(s.cfgOpts, opts...)
	}
}

// New loads the default AWS configuration and creates a Store for bucket.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	st := applySettings(opts)
	cfgOpts := st.cfgOpts
	if st.region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(st.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, opts...), nil
}

// NewStore creates a Store on an existing client.
func NewStore(client Client, bucket string, opts ...Option) *Store {
	st := applySettings(opts)
	return &Store{
		client:   client,
		uploader: newUploader(client, st.upload),
		bucket:   bucket,
		prefix:   st.prefix,
		cfg:      st.upload,
	}
}

func applySettings(opts []Option) settings {
	st := settings{upload: DefaultUploadConfig()}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Get downloads a blob.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	return io.ReadAll(resp.Body)
}

// Put uploads a blob, using multipart uploads above the part size.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	}
	if s.cfg.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	_, err := s.uploader.Upload(ctx, input)
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !errors.Is(mapError(err), storage.ErrNotFound) {
		return err
	}
	return nil
}

// List returns the names below the store prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	if strings.HasSuffix(prefix, "/") {
		full += "/"
	}
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(full),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel != "" {
				keys = append(keys, rel)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// mapError maps missing-object responses onto storage.ErrNotFound.
func mapError(err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return storage.ErrNotFound
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return storage.ErrNotFound
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return storage.ErrNotFound
		}
	}
	return err
}
