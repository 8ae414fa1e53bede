package storage

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	s3BucketFlag     = "s3-bucket"
	s3PrefixFlag     = "s3-prefix"
	s3RegionFlag     = "s3-region"
	s3EndpointFlag   = "s3-endpoint"
	s3AccessKeyFlag  = "s3-access-key-id"
	s3SecretKeyFlag  = "s3-secret-access-key"
	s3PresignTTLFlag = "s3-presign-ttl"
)

func registerS3Flags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   s3BucketFlag,
			Usage:  "s3 bucket with video content",
			EnvVar: "S3_BUCKET",
		},
		cli.StringFlag{
			Name:   s3PrefixFlag,
			Usage:  "s3 key prefix",
			EnvVar: "S3_PREFIX",
		},
		cli.StringFlag{
			Name:   s3RegionFlag,
			Usage:  "s3 region",
			Value:  "us-east-1",
			EnvVar: "AWS_REGION",
		},
		cli.StringFlag{
			Name:   s3EndpointFlag,
			Usage:  "s3 endpoint",
			EnvVar: "AWS_ENDPOINT",
		},
		cli.StringFlag{
			Name:   s3AccessKeyFlag,
			Usage:  "s3 access key id",
			EnvVar: "AWS_ACCESS_KEY_ID",
		},
		cli.StringFlag{
			Name:   s3SecretKeyFlag,
			Usage:  "s3 secret access key",
			EnvVar: "AWS_SECRET_ACCESS_KEY",
		},
		cli.DurationFlag{
			Name:   s3PresignTTLFlag,
			Usage:  "ttl of presigned content urls",
			Value:  6 * time.Hour,
			EnvVar: "S3_PRESIGN_TTL",
		},
	)
}

// S3 hands out presigned GET urls, so content never passes through us.
type S3 struct {
	cl     *s3.S3
	bucket string
	prefix string
	ttl    time.Duration
}

// Ensure S3 implements Storage
var _ Storage = (*S3)(nil)

func NewS3(c *cli.Context) (*S3, error) {
	bucket := c.String(s3BucketFlag)
	if bucket == "" {
		return nil, errors.New("s3 bucket is required for s3 storage")
	}
	cfg := &aws.Config{
		Region:           aws.String(c.String(s3RegionFlag)),
		S3ForcePathStyle: aws.Bool(true),
	}
	if ep := c.String(s3EndpointFlag); ep != "" {
		cfg.Endpoint = aws.String(ep)
	}
	if id := c.String(s3AccessKeyFlag); id != "" {
		cfg.Credentials = credentials.NewStaticCredentials(id, c.String(s3SecretKeyFlag), "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}
	log.Infof("s3 storage bucket %v", bucket)
	return NewS3WithClient(s3.New(sess), bucket, c.String(s3PrefixFlag), c.Duration(s3PresignTTLFlag)), nil
}

func NewS3WithClient(cl *s3.S3, bucket, prefix string, ttl time.Duration) *S3 {
	return &S3{
		cl:     cl,
		bucket: bucket,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *S3) Locate(ctx context.Context, key string) (*Content, error) {
	req, _ := s.cl.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + strings.TrimPrefix(key, "/")),
	})
	req.SetContext(ctx)
	u, err := req.Presign(s.ttl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to presign content key=%v", key)
	}
	return &Content{RedirectURL: u}, nil
}
