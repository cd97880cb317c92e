package datasets

import (
	"fmt"
	"sort"

	"standardtransform/pkg/config"
)

// Registry looks datasets up by name.
type Registry struct {
	byName map[string]*Dataset
}

// NewRegistry builds every dataset in cfg.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Dataset, len(cfg.Datasets))}
	for _, dc := range cfg.Datasets {
		d, err := FromConfig(dc)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("dataset %q is defined twice", d.Name)
		}
		r.byName[d.Name] = d
	}
	return r, nil
}

// DefaultRegistry holds the built-in datasets.
func DefaultRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Dataset)}
	for _, d := range []*Dataset{Minnie65(), V1DD()} {
		r.byName[d.Name] = d
	}
	return r
}

// Get returns the named dataset.
func (r *Registry) Get(name string) (*Dataset, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return d, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
