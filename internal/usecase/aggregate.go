package usecase

import "megakeep/internal/domain"

// Aggregator folds per-account outcomes into a run summary. Totals are
// maintained incrementally; Finalize recomputes nothing.
type Aggregator struct {
	summary domain.RunSummary
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) Record(outcome domain.Outcome) {
	a.summary.Attempted++

	switch outcome.Status {
	case domain.OutcomeSuccess:
		a.summary.Succeeded++
		a.summary.Totals = a.summary.Totals.Add(outcome.Stats)
	case domain.OutcomeUploadFailed:
		// A failed upload may still carry usable usage numbers.
		a.summary.Totals = a.summary.Totals.Add(outcome.Stats)
		a.summary.FailedAccounts = append(a.summary.FailedAccounts, outcome.Account.Email)
	case domain.OutcomeLoginFailed:
		a.summary.FailedAccounts = append(a.summary.FailedAccounts, outcome.Account.Email)
	}
}

func (a *Aggregator) Finalize() domain.RunSummary {
	return a.summary
}
