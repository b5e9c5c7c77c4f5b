package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rmtl/internal/domain"
)

// MockEnumService is a mock implementation of service.EnumService.
type MockEnumService struct {
	mock.Mock
}

func (m *MockEnumService) GetEnums(ctx context.Context) (*domain.EnumSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnumSet), args.Error(1)
}
