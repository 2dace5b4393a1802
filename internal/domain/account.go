package domain

import "fmt"

type Account struct {
	Email    string
	Password string
}

type StorageStats struct {
	TotalGB float64
	UsedGB  float64
	FreeGB  float64
}

func (s StorageStats) Add(other StorageStats) StorageStats {
	return StorageStats{
		TotalGB: s.TotalGB + other.TotalGB,
		UsedGB:  s.UsedGB + other.UsedGB,
		FreeGB:  s.FreeGB + other.FreeGB,
	}
}

func (s StorageStats) String() string {
	return fmt.Sprintf("Total %.2f GiB | Used %.2f GiB | Free %.2f GiB",
		s.TotalGB, s.UsedGB, s.FreeGB)
}

type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeLoginFailed
	OutcomeUploadFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeLoginFailed:
		return "login failed"
	case OutcomeUploadFailed:
		return "upload failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of processing one account in one run.
// Stats are populated for OutcomeSuccess and OutcomeUploadFailed; a failed
// upload still carries whatever usage numbers were gathered before it.
type Outcome struct {
	Account Account
	Status  OutcomeStatus
	Stats   StorageStats
}

type RunSummary struct {
	Attempted      int
	Succeeded      int
	FailedAccounts []string
	Totals         StorageStats
}
