package s3

import (
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3pkg "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cirruslabs/etagd/internal/remote"
	"net/url"
)

var ErrNoETag = errors.New("object has no ETag")

type S3 struct {
	client *s3pkg.Client
}

type Config struct {
	// Endpoint is only needed for S3-compatible services, leave empty for AWS
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
}

func New(client *s3pkg.Client) *S3 {
	return &S3{
		client: client,
	}
}

func NewFromConfig(ctx context.Context, cfg *Config) (*S3, error) {
	var loadOptions []func(*config.LoadOptions) error

	if cfg.Region != "" {
		loadOptions = append(loadOptions, config.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var s3Options []func(*s3pkg.Options)

	if cfg.Endpoint != "" {
		s3EndpointURL, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to parse S3 endpoint %q: %w", cfg.Endpoint, err)
		}

		s3Options = append(s3Options, func(options *s3pkg.Options) {
			options.EndpointResolverV2 = &s3EndpointResolver{url: s3EndpointURL}
			options.UsePathStyle = true
		})
	}

	return New(s3pkg.NewFromConfig(awsConfig, s3Options...)), nil
}

func (s3 *S3) Client() *s3pkg.Client {
	return s3.client
}

func (s3 *S3) Head(ctx context.Context, bucket string, key string) (string, error) {
	result, err := s3.client.HeadObject(ctx, &s3pkg.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", convertErr(err)
	}

	if result.ETag == nil {
		return "", ErrNoETag
	}

	return *result.ETag, nil
}

func convertErr(err error) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %v", remote.ErrNotFound, err)
	}

	return err
}
