package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rmtl/internal/domain"
	"rmtl/internal/metrics"
	"rmtl/internal/port"
)

// EnumService serves the selectable vocabularies, through a cache when one is
// configured.
type EnumService interface {
	GetEnums(ctx context.Context) (*domain.EnumSet, error)
}

type enumService struct {
	source port.EnumSource
	cache  port.EnumCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewEnumService creates a new EnumService. cache may be nil.
func NewEnumService(source port.EnumSource, cache port.EnumCache, ttl time.Duration, logger *zap.Logger) EnumService {
	return &enumService{source: source, cache: cache, ttl: ttl, logger: logger}
}

func (s *enumService) GetEnums(ctx context.Context) (*domain.EnumSet, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			metrics.IncEnumCache("error")
			s.logger.Warn("enum cache read failed, fetching from source", zap.Error(err))
		case cached != nil:
			metrics.IncEnumCache("hit")
			return cached, nil
		default:
			metrics.IncEnumCache("miss")
		}
	}

	start := time.Now()
	enums, err := s.source.GetEnums(ctx)
	if err != nil {
		metrics.ObserveFetch("enums", metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("service.GetEnums: %w", err)
	}
	metrics.ObserveFetch("enums", metrics.ResultSuccess, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, enums, s.ttl); err != nil {
			s.logger.Warn("enum cache write failed", zap.Error(err))
		}
	}
	return enums, nil
}
