package port

import (
	"context"

	"rmtl/internal/domain"
)

// SubmitAck is the backend acknowledgment of an accepted batch.
type SubmitAck struct {
	Accepted  int     `json:"accepted"`
	ReportIDs []int64 `json:"report_ids,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// ReportSubmitter posts a whole batch in one call. The call is atomic: either
// every row is accepted or none is.
type ReportSubmitter interface {
	SubmitReports(ctx context.Context, rows []domain.WireReportRow) (*SubmitAck, error)
}
