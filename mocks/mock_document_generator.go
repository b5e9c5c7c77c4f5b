package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rmtl/internal/port"
)

// MockDocumentGenerator is a mock implementation of port.DocumentGenerator.
type MockDocumentGenerator struct {
	mock.Mock
}

func (m *MockDocumentGenerator) Generate(ctx context.Context, req port.DocumentRequest) (*port.DocumentRef, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.DocumentRef), args.Error(1)
}
