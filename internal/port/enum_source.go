package port

import (
	"context"
	"time"

	"rmtl/internal/domain"
)

// EnumSource fetches the selectable vocabularies.
type EnumSource interface {
	GetEnums(ctx context.Context) (*domain.EnumSet, error)
}

// EnumCache stores vocabularies between fetches. Get returns nil, nil on a miss.
type EnumCache interface {
	Get(ctx context.Context) (*domain.EnumSet, error)
	Set(ctx context.Context, enums *domain.EnumSet, ttl time.Duration) error
}
