package summarycontent

import "fmt"

// Registry is the ordered, immutable list of content configurations. Its
// order is the order branches appear in the union.
type Registry struct {
	configs []Configuration
}

// NewRegistry creates a registry over configs, keeping their order.
func NewRegistry(configs ...Configuration) (*Registry, error) {
	seen := make(map[string]struct{}, len(configs))
	list := make([]Configuration, 0, len(configs))
	for i, c := range configs {
		if c == nil {
			return nil, fmt.Errorf("%w: configuration %d is nil", ErrInvalidConfiguration, i)
		}
		if _, dup := seen[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate configuration %q", ErrInvalidConfiguration, c.Name())
		}
		seen[c.Name()] = struct{}{}
		list = append(list, c)
	}
	return &Registry{configs: list}, nil
}

// Configurations returns a copy of the registered configurations.
func (r *Registry) Configurations() []Configuration {
	out := make([]Configuration, len(r.configs))
	copy(out, r.configs)
	return out
}

// Len returns the number of registered configurations.
func (r *Registry) Len() int {
	return len(r.configs)
}

// Matching returns, in registry order, the configurations relevant to filters.
func (r *Registry) Matching(filters Filters) []Configuration {
	var matching []Configuration
	for _, c := range r.configs {
		if c.ShouldQueryBeIncluded(filters) {
			matching = append(matching, c)
		}
	}
	return matching
}
