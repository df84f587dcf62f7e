package config

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/routetree/internal/errors"
)

// ObjectGetter is the part of the S3 client LoadURI uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// RemoteOption configures LoadURI.
type RemoteOption func(*remoteOptions)

type remoteOptions struct {
	client    ObjectGetter
	region    string
	endpoint  string
	accessKey string
	secretKey string
}

// WithS3Client uses a pre-configured client instead of one built from the
// default AWS configuration.
func WithS3Client(client ObjectGetter) RemoteOption {
	return func(o *remoteOptions) {
		o.client = client
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) RemoteOption {
	return func(o *remoteOptions) {
		o.region = region
	}
}

// WithEndpoint points the client at an S3-compatible service (MinIO and
// similar), using path-style addressing.
func WithEndpoint(endpoint string) RemoteOption {
	return func(o *remoteOptions) {
		o.endpoint = endpoint
	}
}

// WithStaticCredentials uses fixed credentials instead of the default
// provider chain.
func WithStaticCredentials(accessKey, secretKey string) RemoteOption {
	return func(o *remoteOptions) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// LoadURI loads a route map from a local path, a file:// URI or an
// s3://bucket/key URI.
func LoadURI(ctx context.Context, uri string, opts ...RemoteOption) (*Config, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return LoadFile(uri)
	}

	switch u.Scheme {
	case "file":
		return LoadFile(u.Path)
	case "s3":
		return loadS3(ctx, u, opts)
	}
	return nil, errors.New(errors.CodeConfigUnsupported).
		WithDetail("scheme " + u.Scheme).
		WithSuggestion("Use a file path or an s3://bucket/key URI")
}

func loadS3(ctx context.Context, u *url.URL, opts []RemoteOption) (*Config, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, errors.New(errors.CodeConfigRemote).
			WithDetailf("%q is not an s3://bucket/key URI", u.String())
	}

	format, ok := FormatOf(key)
	if !ok {
		return nil, errors.New(errors.CodeConfigUnsupported).WithDetail(path.Base(key))
	}

	o := &remoteOptions{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		var err error
		if client, err = newS3Client(ctx, o); err != nil {
			return nil, err
		}
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New(errors.CodeConfigRemote).WithDetail(u.String()).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New(errors.CodeConfigRemote).WithDetail(u.String()).Wrap(err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	cfg.configPath = u.String()
	return cfg, nil
}

func newS3Client(ctx context.Context, o *remoteOptions) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.region))
	}
	if o.accessKey != "" && o.secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New(errors.CodeConfigRemote).
			WithDetail("failed to load AWS config").
			Wrap(err)
	}

	return s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	}), nil
}
