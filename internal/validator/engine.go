package validator

import (
	"context"
	"fmt"

	"rmtl/internal/domain"
)

// Engine runs the registered rules against a batch.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// NewDefaultEngine creates an engine with the builtin rules registered.
func NewDefaultEngine() *Engine {
	r := NewRegistry()
	for _, v := range BuiltinValidators() {
		r.Register(v)
	}
	return NewEngine(r)
}

// Validate returns nil when every rule passes, otherwise the first failure.
func (e *Engine) Validate(ctx context.Context, batch *domain.Batch) error {
	if batch == nil {
		return fmt.Errorf("validator.Engine: nil batch")
	}
	for _, v := range e.registry.All() {
		if err := v.Validate(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// Rules lists the rule keys in evaluation order.
func (e *Engine) Rules() []string {
	all := e.registry.All()
	keys := make([]string, 0, len(all))
	for _, v := range all {
		keys = append(keys, v.RuleKey())
	}
	return keys
}
