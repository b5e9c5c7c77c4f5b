package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"rmtl/internal/domain"
	"rmtl/internal/service"
)

// MockWorkspaceService is a mock implementation of service.WorkspaceService.
type MockWorkspaceService struct {
	mock.Mock
}

func snapshotResult(args mock.Arguments) (*service.Snapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Snapshot), args.Error(1)
}

func (m *MockWorkspaceService) Open(ctx context.Context, req service.OpenRequest) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, req))
}

func (m *MockWorkspaceService) Get(ctx context.Context, id uuid.UUID) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id))
}

func (m *MockWorkspaceService) Close(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkspaceService) Reload(ctx context.Context, id uuid.UUID) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id))
}

func (m *MockWorkspaceService) SetHeader(ctx context.Context, id uuid.UUID, h domain.BatchHeader) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id, h))
}

func (m *MockWorkspaceService) AppendRow(ctx context.Context, id uuid.UUID) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id))
}

func (m *MockWorkspaceService) GetRow(ctx context.Context, id uuid.UUID, pos int) (*domain.TestRow, error) {
	args := m.Called(ctx, id, pos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestRow), args.Error(1)
}

func (m *MockWorkspaceService) RemoveRow(ctx context.Context, id uuid.UUID, pos int) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id, pos))
}

func (m *MockWorkspaceService) UpdateRow(ctx context.Context, id uuid.UUID, pos int, edit domain.RowEdit) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id, pos, edit))
}

func (m *MockWorkspaceService) SetSerial(ctx context.Context, id uuid.UUID, pos int, serial string) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id, pos, serial))
}

func (m *MockWorkspaceService) Pick(ctx context.Context, id uuid.UUID, assignmentIDs []int64) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id, assignmentIDs))
}

func (m *MockWorkspaceService) Validate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkspaceService) Clear(ctx context.Context, id uuid.UUID) (*service.Snapshot, error) {
	return snapshotResult(m.Called(ctx, id))
}

func (m *MockWorkspaceService) Submit(ctx context.Context, id uuid.UUID) (*service.SubmitResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}
