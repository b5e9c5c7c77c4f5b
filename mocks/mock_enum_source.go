package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rmtl/internal/domain"
)

// MockEnumSource is a mock implementation of port.EnumSource.
type MockEnumSource struct {
	mock.Mock
}

func (m *MockEnumSource) GetEnums(ctx context.Context) (*domain.EnumSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnumSet), args.Error(1)
}

// MockEnumCache is a mock implementation of port.EnumCache.
type MockEnumCache struct {
	mock.Mock
}

func (m *MockEnumCache) Get(ctx context.Context) (*domain.EnumSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnumSet), args.Error(1)
}

func (m *MockEnumCache) Set(ctx context.Context, enums *domain.EnumSet, ttl time.Duration) error {
	args := m.Called(ctx, enums, ttl)
	return args.Error(0)
}
