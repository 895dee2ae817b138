package extractor

import (
	"fmt"
	"regexp"
)

type entry struct {
	name    string
	pattern *regexp.Regexp
	factory Factory
}

// Registry is an ordered URL-pattern dispatch table. Registration happens
// in a single initialization phase; lookups are read-only afterward and
// the table is not safe for concurrent mutation.
type Registry struct {
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a pattern entry. Patterns are anchored at the start of
// the URL; iteration order is registration order, so duplicate patterns
// shadow later ones.
func (r *Registry) Register(name, pattern string, factory Factory) error {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return fmt.Errorf("compile pattern for %s: %w", name, err)
	}
	r.entries = append(r.entries, entry{name: name, pattern: re, factory: factory})
	return nil
}

// MustRegister is Register for the static init tables, where a bad
// pattern is a programming error.
func (r *Registry) MustRegister(name, pattern string, factory Factory) {
	if err := r.Register(name, pattern, factory); err != nil {
		panic(err)
	}
}

// Find returns the first matching extractor instance and its registered
// name, or nil when no pattern claims the URL.
func (r *Registry) Find(url string) (Extractor, string) {
	for _, e := range r.entries {
		if m := e.pattern.FindStringSubmatch(url); m != nil {
			return e.factory(url, m), e.name
		}
	}
	return nil, ""
}

// Names returns the registered entry names in match-priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}
