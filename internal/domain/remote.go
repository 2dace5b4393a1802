package domain

import "context"

// RemoteClient wraps the provider-specific operations needed to keep one
// account alive. Implementations must not retry internally; bounded retry is
// applied by the caller.
type RemoteClient interface {
	// TestLogin verifies the credentials by listing the account root.
	TestLogin(ctx context.Context, account Account) error

	// QueryUsage reports storage usage. It is best effort and never fails:
	// any component that cannot be determined is reported as 0.
	QueryUsage(ctx context.Context, account Account) StorageStats

	// ReplaceMarker deletes any previous marker file at the remote path and
	// uploads localPath in its place. It must be safe to re-invoke.
	ReplaceMarker(ctx context.Context, account Account, localPath string) error

	// Name identifies the provider in logs.
	Name() string
}
