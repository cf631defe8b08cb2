package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Indirections for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ArchiveConfig holds the object-storage settings for off-device backup
// copies. BaseEndpoint supports S3-compatible backends such as MinIO.
type ArchiveConfig struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// Archiver uploads and fetches backup documents in an S3 bucket.
type Archiver struct {
	cfg ArchiveConfig
}

func NewArchiver(cfg ArchiveConfig) *Archiver {
	return &Archiver{cfg: cfg}
}

func (a *Archiver) client(ctx context.Context) (s3API, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(a.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.cfg.AccessKey,
			a.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.BaseEndpoint)
		}
	}), nil
}

// archiveKey buckets objects by date so listings stay navigable.
func archiveKey(now time.Time) string {
	return fmt.Sprintf("backups/%d/%02d/%02d/%v.json", now.Year(), now.Month(), now.Day(), uuid.New())
}

// Upload stores the encoded document and returns its object key.
func (a *Archiver) Upload(ctx context.Context, doc *Document) (string, error) {
	client, err := a.client(ctx)
	if err != nil {
		return "", err
	}

	data, err := doc.Encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	key := archiveKey(time.Now())
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}
	return key, nil
}

// Download fetches and parses the document stored under key.
func (a *Archiver) Download(ctx context.Context, key string) (*Document, error) {
	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download backup: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup body: %w", err)
	}
	return Parse(data)
}
