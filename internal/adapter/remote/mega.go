package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"megakeep/internal/domain"
)

const megaRoot = "/Root"

// MegaClient drives a MEGA account through the megatools command-line
// utilities, one subprocess per operation.
type MegaClient struct {
	runner     Runner
	remotePath string
}

func NewMega(runner Runner, remotePath string) *MegaClient {
	return &MegaClient{
		runner:     runner,
		remotePath: remotePath,
	}
}

// MegaBinaries lists the external tools the client invokes. All of them must
// be present on PATH before a run starts.
func MegaBinaries() []string {
	return []string{"megals", "megadf", "megarm", "megaput"}
}

func (m *MegaClient) Name() string {
	return "mega"
}

func (m *MegaClient) TestLogin(ctx context.Context, account domain.Account) error {
	args := append(m.credentialArgs(account), megaRoot)
	if _, err := m.runner.Run(ctx, "megals", args...); err != nil {
		return fmt.Errorf("login test: %w", err)
	}
	return nil
}

func (m *MegaClient) QueryUsage(ctx context.Context, account domain.Account) domain.StorageStats {
	return domain.StorageStats{
		TotalGB: m.queryGB(ctx, account, "--total"),
		UsedGB:  m.queryGB(ctx, account, "--used"),
		FreeGB:  m.queryGB(ctx, account, "--free"),
	}
}

// queryGB runs one megadf query. Failures and unparseable output degrade to 0
// so that usage reporting never blocks the keep-alive itself.
func (m *MegaClient) queryGB(ctx context.Context, account domain.Account, field string) float64 {
	args := append(m.credentialArgs(account), field, "--gb")
	out, err := m.runner.Run(ctx, "megadf", args...)
	if err != nil {
		return 0
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func (m *MegaClient) ReplaceMarker(ctx context.Context, account domain.Account, localPath string) error {
	// Best effort cleanup of a previous marker: if the delete fails the
	// upload below will fail loudly anyway.
	listArgs := append(m.credentialArgs(account), m.remotePath)
	if out, err := m.runner.Run(ctx, "megals", listArgs...); err == nil && strings.Contains(out, m.remotePath) {
		rmArgs := append(m.credentialArgs(account), m.remotePath)
		_, _ = m.runner.Run(ctx, "megarm", rmArgs...)
	}

	putArgs := append(m.credentialArgs(account), fmt.Sprintf("--path=%s", m.remotePath), localPath)
	if _, err := m.runner.Run(ctx, "megaput", putArgs...); err != nil {
		return fmt.Errorf("marker upload: %w", err)
	}
	return nil
}

func (m *MegaClient) credentialArgs(account domain.Account) []string {
	return []string{
		fmt.Sprintf("--username=%s", account.Email),
		fmt.Sprintf("--password=%s", account.Password),
	}
}
