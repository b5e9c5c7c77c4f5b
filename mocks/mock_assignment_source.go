package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

// MockAssignmentSource is a mock implementation of port.AssignmentSource.
type MockAssignmentSource struct {
	mock.Mock
}

func (m *MockAssignmentSource) ListAssigned(ctx context.Context, q port.AssignmentQuery) ([]domain.AssignmentRecord, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssignmentRecord), args.Error(1)
}
