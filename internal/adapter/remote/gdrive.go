package remote

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	appconfig "megakeep/internal/config"
	"megakeep/internal/domain"
)

// GDriveClient keeps Google Drive accounts alive. The account's password
// field carries the path to that account's credentials JSON file.
type GDriveClient struct {
	cfg        *appconfig.GDriveProvider
	markerName string
}

func NewGDrive(cfg *appconfig.GDriveProvider, markerName string) *GDriveClient {
	return &GDriveClient{
		cfg:        cfg,
		markerName: markerName,
	}
}

func (g *GDriveClient) Name() string {
	return "gdrive"
}

func (g *GDriveClient) service(ctx context.Context, account domain.Account) (*drive.Service, error) {
	service, err := drive.NewService(ctx, option.WithCredentialsFile(account.Password))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return service, nil
}

func (g *GDriveClient) TestLogin(ctx context.Context, account domain.Account) error {
	service, err := g.service(ctx, account)
	if err != nil {
		return err
	}

	if _, err := service.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return fmt.Errorf("login test: %w", err)
	}
	return nil
}

func (g *GDriveClient) QueryUsage(ctx context.Context, account domain.Account) domain.StorageStats {
	service, err := g.service(ctx, account)
	if err != nil {
		return domain.StorageStats{}
	}

	about, err := service.About.Get().Fields("storageQuota").Context(ctx).Do()
	if err != nil || about.StorageQuota == nil {
		return domain.StorageStats{}
	}

	quota := about.StorageQuota
	stats := domain.StorageStats{
		TotalGB: float64(quota.Limit) / bytesPerGB,
		UsedGB:  float64(quota.Usage) / bytesPerGB,
	}
	if free := stats.TotalGB - stats.UsedGB; free > 0 {
		stats.FreeGB = free
	}
	return stats
}

func (g *GDriveClient) ReplaceMarker(ctx context.Context, account domain.Account, localPath string) error {
	service, err := g.service(ctx, account)
	if err != nil {
		return err
	}

	// Best effort cleanup of previous markers; Drive allows duplicate names
	// so every match is removed.
	query := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", g.cfg.FolderID, g.markerName)
	if fileList, err := service.Files.List().Q(query).Fields("files(id)").Context(ctx).Do(); err == nil {
		for _, file := range fileList.Files {
			_ = service.Files.Delete(file.Id).Context(ctx).Do()
		}
	}

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open marker file: %w", err)
	}
	defer file.Close()

	fileMetadata := &drive.File{
		Name:    g.markerName,
		Parents: []string{g.cfg.FolderID},
	}

	if _, err := service.Files.Create(fileMetadata).Media(file).Context(ctx).Do(); err != nil {
		return fmt.Errorf("marker upload: %w", err)
	}

	return nil
}
