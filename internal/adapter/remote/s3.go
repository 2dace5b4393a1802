package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "megakeep/internal/config"
	"megakeep/internal/domain"
)

const bytesPerGB = 1024 * 1024 * 1024

// S3Client keeps S3-compatible accounts alive. The account's email and
// password fields carry the access key and secret key.
type S3Client struct {
	cfg        *appconfig.S3Provider
	markerName string
}

func NewS3(cfg *appconfig.S3Provider, markerName string) *S3Client {
	return &S3Client{
		cfg:        cfg,
		markerName: markerName,
	}
}

func (s *S3Client) Name() string {
	return "s3"
}

func (s *S3Client) api(ctx context.Context, account domain.Account) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(account.Email, account.Password, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg), nil
}

func (s *S3Client) TestLogin(ctx context.Context, account domain.Account) error {
	client, err := s.api(ctx, account)
	if err != nil {
		return err
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.cfg.Bucket}); err != nil {
		return fmt.Errorf("login test: %w", err)
	}
	return nil
}

// QueryUsage sums object sizes in the bucket. S3 has no quota API, so the
// total comes from the configured quota and free is derived from it.
func (s *S3Client) QueryUsage(ctx context.Context, account domain.Account) domain.StorageStats {
	stats := domain.StorageStats{TotalGB: s.cfg.QuotaGB}

	client, err := s.api(ctx, account)
	if err != nil {
		stats.FreeGB = stats.TotalGB
		return stats
	}

	var usedBytes int64
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: &s.cfg.Bucket,
		Prefix: &s.cfg.Prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			usedBytes = 0
			break
		}
		for _, obj := range page.Contents {
			if obj.Size != nil {
				usedBytes += *obj.Size
			}
		}
	}

	stats.UsedGB = float64(usedBytes) / bytesPerGB
	if free := stats.TotalGB - stats.UsedGB; free > 0 {
		stats.FreeGB = free
	}
	return stats
}

func (s *S3Client) ReplaceMarker(ctx context.Context, account domain.Account, localPath string) error {
	client, err := s.api(ctx, account)
	if err != nil {
		return err
	}

	key := filepath.Join(s.cfg.Prefix, s.markerName)

	// Delete failures are tolerated; the upload overwrites the key anyway.
	_, _ = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open marker file: %w", err)
	}
	defer file.Close()

	uploader := s3manager.NewUploader(client)
	if _, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
		Body:   file,
	}); err != nil {
		return fmt.Errorf("marker upload: %w", err)
	}

	return nil
}
