// Package validator decides whether a batch may be submitted.
//
// Rules run in registration order and the first failure wins, so the same
// invalid batch always produces the same error.
package validator

import (
	"context"

	"rmtl/internal/domain"
)

// Validator is a single batch rule. Validate returns nil on pass, otherwise a
// *domain.ContextError or *domain.ValidationError.
type Validator interface {
	Validate(ctx context.Context, batch *domain.Batch) error
	RuleKey() string
	RuleName() string
}
