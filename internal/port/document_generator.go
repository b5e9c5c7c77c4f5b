package port

import (
	"context"
	"time"

	"rmtl/internal/domain"
)

// DocumentRequest is what the certificate/report renderer receives after a
// successful submission: the header and rows exactly as submitted.
type DocumentRequest struct {
	ReportType  domain.ReportType       `json:"report_type"`
	Context     domain.OperatingContext `json:"context"`
	Header      domain.BatchHeader      `json:"header"`
	Rows        []domain.TestRow        `json:"rows"`
	Submitted   []domain.WireReportRow  `json:"submitted"`
	SubmittedAt time.Time               `json:"submitted_at"`
}

// DocumentRef locates a generated or queued document.
type DocumentRef struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}

// DocumentGenerator hands a finished batch to the document renderer.
type DocumentGenerator interface {
	Generate(ctx context.Context, req DocumentRequest) (*DocumentRef, error)
}
