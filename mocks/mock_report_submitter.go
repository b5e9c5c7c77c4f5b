package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

// MockReportSubmitter is a mock implementation of port.ReportSubmitter.
type MockReportSubmitter struct {
	mock.Mock
}

func (m *MockReportSubmitter) SubmitReports(ctx context.Context, rows []domain.WireReportRow) (*port.SubmitAck, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.SubmitAck), args.Error(1)
}
