// Package selectconf holds named configuration for select-style UI widgets.
// Partial configs are registered once at startup; callers resolve a named
// config merged with their own per-call overrides.
package selectconf

import (
	"errors"
	"sort"
	"sync"
)

// ErrInvalidConfigShape is returned when a merge exceeds the depth guard,
// which in practice means a cyclic or pathologically nested config.
var ErrInvalidConfigShape = errors.New("selectconf: config nesting too deep")

// maxMergeDepth bounds recursion during merge. Real widget configs are a
// handful of levels deep; anything past this is a broken object graph.
const maxMergeDepth = 64

// Registry maps widget names to partial configuration objects. Construct one
// explicitly at startup and pass it to consumers; there is no package-level
// registry.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]map[string]any),
	}
}

// Register stores cfg under name, replacing any prior registration outright.
// No merging happens at registration time.
func (r *Registry) Register(name string, cfg map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
}

// Names returns the registered widget names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a new config obtained by deep-merging opts onto the config
// registered under name. A nil result with a nil error means nothing is
// registered under name and no options were supplied.
//
// Maps merge key-wise and recursively; scalars, slices, and any other values
// replace wholesale. The returned map is newly allocated and neither the
// stored config nor opts is mutated. Nested branches of the stored config
// that opts did not touch may still be shared by reference; callers must not
// rely on deep isolation of unmerged branches.
func (r *Registry) Resolve(name string, opts map[string]any) (map[string]any, error) {
	r.mu.RLock()
	base, registered := r.configs[name]
	r.mu.RUnlock()

	if !registered && opts == nil {
		return nil, nil
	}

	return merge(base, opts, 0)
}

// merge overlays overlay onto base, allocating a fresh map. Either argument
// may be nil.
func merge(base, overlay map[string]any, depth int) (map[string]any, error) {
	if depth > maxMergeDepth {
		return nil, ErrInvalidConfigShape
	}

	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		existing, ok := out[k]
		if ok {
			em, emOK := existing.(map[string]any)
			om, omOK := v.(map[string]any)
			if emOK && omOK {
				merged, err := merge(em, om, depth+1)
				if err != nil {
					return nil, err
				}
				out[k] = merged
				continue
			}
		}
		out[k] = v
	}
	return out, nil
}
