// Package registry provides the insertion-ordered, deduplicating entity map filled
// during the first ingest pass.
package registry

// Registry maps keys to entity attributes, remembering insertion order. It is owned by
// a single run and is not safe for concurrent use.
type Registry[V any] struct {
	order  []string
	values map[string]V
}

func New[V any]() *Registry[V] {
	return &Registry[V]{values: make(map[string]V)}
}

// Register stores value under key unless key is already present. The first
// registration wins; the return value reports whether value was stored.
func (r *Registry[V]) Register(key string, value V) bool {
	if key == "" {
		return false
	}
	if _, ok := r.values[key]; ok {
		return false
	}
	r.values[key] = value
	r.order = append(r.order, key)
	return true
}

func (r *Registry[V]) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *Registry[V]) Get(key string) (V, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Registry[V]) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry[V]) Len() int {
	return len(r.order)
}

// First returns the earliest registered key.
func (r *Registry[V]) First() (string, bool) {
	if len(r.order) == 0 {
		return "", false
	}
	return r.order[0], true
}
