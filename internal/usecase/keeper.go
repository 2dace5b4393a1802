package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"megakeep/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type Retryer interface {
	Do(ctx context.Context, maxAttempts int, delay time.Duration, op func(ctx context.Context) error) error
}

// Keeper drives one account through its keep-alive lifecycle:
// login test, usage query, marker replacement.
type Keeper struct {
	client         domain.RemoteClient
	retry          Retryer
	logger         Logger
	loginAttempts  int
	uploadAttempts int
	retryDelay     time.Duration

	markerPath string
	now        func() time.Time
}

func NewKeeper(
	client domain.RemoteClient,
	retry Retryer,
	logger Logger,
	loginAttempts int,
	uploadAttempts int,
	retryDelay time.Duration,
) *Keeper {
	return &Keeper{
		client:         client,
		retry:          retry,
		logger:         logger,
		loginAttempts:  loginAttempts,
		uploadAttempts: uploadAttempts,
		retryDelay:     retryDelay,
		markerPath:     filepath.Join(os.TempDir(), ".megakeep_marker.txt"),
		now:            time.Now,
	}
}

// Process runs the account through login, usage query and marker replacement
// and returns its outcome. Failures are contained here; the caller decides
// nothing beyond recording the result.
func (uc *Keeper) Process(ctx context.Context, account domain.Account) domain.Outcome {
	email := account.Email
	uc.logger.Infof("[%s] Checking login via %s...", email, uc.client.Name())

	err := uc.retry.Do(ctx, uc.loginAttempts, uc.retryDelay, func(ctx context.Context) error {
		return uc.client.TestLogin(ctx, account)
	})
	if err != nil {
		uc.logger.Errorf("[%s] Login failed: %v", email, err)
		return domain.Outcome{Account: account, Status: domain.OutcomeLoginFailed}
	}

	stats := uc.client.QueryUsage(ctx, account)
	uc.logger.Infof("[%s] %s", email, stats)

	markerPath, err := uc.writeMarker(account, stats)
	if err != nil {
		uc.logger.Errorf("[%s] Failed to write marker file: %v", email, err)
		return domain.Outcome{Account: account, Status: domain.OutcomeUploadFailed, Stats: stats}
	}
	defer os.Remove(markerPath)

	err = uc.retry.Do(ctx, uc.uploadAttempts, uc.retryDelay, func(ctx context.Context) error {
		return uc.client.ReplaceMarker(ctx, account, markerPath)
	})
	if err != nil {
		uc.logger.Errorf("[%s] Marker upload failed: %v", email, err)
		return domain.Outcome{Account: account, Status: domain.OutcomeUploadFailed, Stats: stats}
	}

	uc.logger.Infof("[%s] Marker replaced, account kept alive", email)
	return domain.Outcome{Account: account, Status: domain.OutcomeSuccess, Stats: stats}
}

func (uc *Keeper) writeMarker(account domain.Account, stats domain.StorageStats) (string, error) {
	content := markerContent(uc.now(), account, stats)
	if err := os.WriteFile(uc.markerPath, []byte(content), 0600); err != nil {
		// A failed write may still have truncated or created the file.
		os.Remove(uc.markerPath)
		return "", fmt.Errorf("failed to write marker file: %w", err)
	}
	return uc.markerPath, nil
}

func markerContent(now time.Time, account domain.Account, stats domain.StorageStats) string {
	return fmt.Sprintf(`===xxMegaKeep Activity Log===
Timestamp: %s
Account: %s
Storage Stats: %s
Status: Active
`, now.Format("2006-01-02 15:04:05"), account.Email, stats)
}
