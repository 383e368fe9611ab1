package types

import "github.com/google/uuid"

// BulkFailure describes one id a bulk operation could not transition.
type BulkFailure struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// BulkResult is the exact partition of a bulk operation's unique input ids
// into succeeded and failed.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// PartialFailure reports whether some ids succeeded and some failed.
func (r BulkResult) PartialFailure() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// QueueStatistics is the aggregate view the dashboard renders. Overdue is
// derived against the review SLA at read time, never stored.
type QueueStatistics struct {
	Pending      int64 `json:"pending"`
	UnderReview  int64 `json:"under_review"`
	Approved     int64 `json:"approved"`
	AutoApproved int64 `json:"auto_approved"`
	Rejected     int64 `json:"rejected"`
	Overdue      int64 `json:"overdue"`
}
