package field

import (
	"fmt"
	"strings"
)

// documentPrefix is the root element backend paths may be qualified with.
const documentPrefix = "DOCUMENT/"

// Registry is a read-only snapshot of field configurations indexed by id and by path.
// A nil Registry is valid and finds nothing.
type Registry struct {
	configs []Config
	byID    map[string]Config
	byPath  map[string]Config
}

// NewRegistry indexes configs. Ids must be unique and a path may belong to one field only.
func NewRegistry(configs ...Config) (*Registry, error) {
	r := &Registry{
		configs: make([]Config, 0, len(configs)),
		byID:    make(map[string]Config, len(configs)),
		byPath:  make(map[string]Config, len(configs)),
	}
	for _, c := range configs {
		if _, dup := r.byID[c.ID()]; dup {
			return nil, fmt.Errorf("duplicate field id %q", c.ID())
		}
		r.byID[c.ID()] = c
		for _, name := range c.Names() {
			p := NormalizePath(name)
			if other, dup := r.byPath[p]; dup {
				return nil, fmt.Errorf("path %q mapped by both %q and %q", p, other.ID(), c.ID())
			}
			r.byPath[p] = c
		}
		r.configs = append(r.configs, c)
	}
	return r, nil
}

// LookupByID returns the configuration with the given id.
func (r *Registry) LookupByID(id string) (Config, bool) {
	if r == nil {
		return Config{}, false
	}
	c, ok := r.byID[id]
	return c, ok
}

// LookupByPath returns the configuration mapping the given backend path.
func (r *Registry) LookupByPath(path string) (Config, bool) {
	if r == nil {
		return Config{}, false
	}
	c, ok := r.byPath[NormalizePath(path)]
	return c, ok
}

// Resolve finds the configuration for a backend tag: by path first, then by id.
func (r *Registry) Resolve(tag string) (Config, bool) {
	if c, ok := r.LookupByPath(tag); ok {
		return c, true
	}
	return r.LookupByID(tag)
}

// Configs returns the configurations in declaration order.
func (r *Registry) Configs() []Config {
	if r == nil {
		return nil
	}
	return r.configs
}

// Len returns the number of configured fields.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.configs)
}

// NormalizePath upper-cases a backend path and strips surrounding slashes and
// the DOCUMENT root, so "/document/author" and "AUTHOR" are the same path.
func NormalizePath(path string) string {
	p := strings.ToUpper(strings.Trim(strings.TrimSpace(path), "/"))
	return strings.TrimPrefix(p, documentPrefix)
}
