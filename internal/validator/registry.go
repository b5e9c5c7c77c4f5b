package validator

// Registry keeps validators in the order they were registered.
type Registry struct {
	validators []Validator
	byKey      map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]int)}
}

// Register adds a validator. Registering an existing key replaces it in place.
func (r *Registry) Register(v Validator) {
	if i, ok := r.byKey[v.RuleKey()]; ok {
		r.validators[i] = v
		return
	}
	r.byKey[v.RuleKey()] = len(r.validators)
	r.validators = append(r.validators, v)
}

// Get returns the validator for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Validator {
	if i, ok := r.byKey[key]; ok {
		return r.validators[i]
	}
	return nil
}

// All returns all registered validators in evaluation order.
func (r *Registry) All() []Validator {
	out := make([]Validator, len(r.validators))
	copy(out, r.validators)
	return out
}
