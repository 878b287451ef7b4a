package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/municipio/patentes-backend/config"
)

// ArchiveStorage keeps a copy of every uploaded workbook in S3 so a bad
// import can be replayed or audited later. All methods are no-ops when no
// bucket is configured.
type ArchiveStorage struct {
	client *s3.Client
	bucket string
}

func NewArchiveStorage(cfg appconfig.ArchiveConfig) *ArchiveStorage {
	if cfg.Bucket == "" {
		return &ArchiveStorage{}
	}

	var awsCfg aws.Config
	var err error

	// Static credentials when provided, otherwise the default chain
	// (environment, shared credentials file, IAM role).
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &ArchiveStorage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
	}
}

// Enabled reports whether an archive bucket is configured.
func (s *ArchiveStorage) Enabled() bool {
	return s.client != nil
}

// StoreWorkbook uploads the raw workbook bytes under imports/<uuid>.xlsx and
// returns the object key.
func (s *ArchiveStorage) StoreWorkbook(ctx context.Context, data []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	key := fmt.Sprintf("imports/%s.xlsx", uuid.New().String())

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive workbook: %w", err)
	}

	return key, nil
}
