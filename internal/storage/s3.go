package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Archive uploads rendered documents to an S3 compatible bucket.
type Archive struct {
	client  s3iface.S3API
	bucket  string
	baseURL string
}

func NewArchive(cfg Config) (*Archive, error) {
	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return newArchive(s3.New(sess), cfg), nil
}

func newArchive(client s3iface.S3API, cfg Config) *Archive {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		endpoint := strings.TrimRight(cfg.Endpoint, "/")
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
		}
		base = endpoint + "/" + cfg.Bucket
	}
	return &Archive{client: client, bucket: cfg.Bucket, baseURL: base}
}

// Upload stores content under key and returns its public URL.
func (a *Archive) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	_, err := a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload %s to s3: %w", key, err)
	}
	return a.baseURL + "/" + key, nil
}
