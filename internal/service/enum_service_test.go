package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rmtl/internal/domain"
	"rmtl/internal/service"
	"rmtl/mocks"
)

func TestEnumService_CacheHitSkipsSource(t *testing.T) {
	source := new(mocks.MockEnumSource)
	cache := new(mocks.MockEnumCache)
	cached := &domain.EnumSet{TestMethods: []string{"MANUAL"}}
	cache.On("Get", mock.Anything).Return(cached, nil)

	got, err := service.NewEnumService(source, cache, time.Minute, zap.NewNop()).GetEnums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	source.AssertNotCalled(t, "GetEnums", mock.Anything)
}

func TestEnumService_CacheMissFillsCache(t *testing.T) {
	source := new(mocks.MockEnumSource)
	cache := new(mocks.MockEnumCache)
	fresh := &domain.EnumSet{TestResults: []string{"PASS", "FAIL"}}
	cache.On("Get", mock.Anything).Return(nil, nil)
	source.On("GetEnums", mock.Anything).Return(fresh, nil).Once()
	cache.On("Set", mock.Anything, fresh, 10*time.Minute).Return(nil).Once()

	got, err := service.NewEnumService(source, cache, 10*time.Minute, zap.NewNop()).GetEnums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	cache.AssertExpectations(t)
}

func TestEnumService_CacheErrorsDegradeToSource(t *testing.T) {
	source := new(mocks.MockEnumSource)
	cache := new(mocks.MockEnumCache)
	fresh := &domain.EnumSet{}
	cache.On("Get", mock.Anything).Return(nil, errors.New("connection refused"))
	cache.On("Set", mock.Anything, fresh, time.Minute).Return(errors.New("connection refused"))
	source.On("GetEnums", mock.Anything).Return(fresh, nil)

	got, err := service.NewEnumService(source, cache, time.Minute, zap.NewNop()).GetEnums(context.Background())
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

func TestEnumService_SourceFailure(t *testing.T) {
	source := new(mocks.MockEnumSource)
	source.On("GetEnums", mock.Anything).Return(nil, &domain.TransportError{Op: "backend.GetEnums", Status: 502})

	_, err := service.NewEnumService(source, nil, time.Minute, zap.NewNop()).GetEnums(context.Background())
	var te *domain.TransportError
	assert.True(t, errors.As(err, &te))
}
