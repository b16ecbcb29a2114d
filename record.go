package tabula

import "iter"

// Record is an insertion-ordered flat mapping from encoded paths to values.
// Keys are unique: Set on an existing key replaces the value in place.
type Record[V any] struct {
	keys   []string
	values map[string]V
}

// Flat is a flat record of scalar tree values, produced by Flatten.
type Flat = Record[Value]

// Text is a flat record of raw text, as read from a row.
type Text = Record[string]

// NewRecord returns an empty record sized for n keys.
func NewRecord[V any](n int) *Record[V] {
	return &Record[V]{
		keys:   make([]string, 0, n),
		values: make(map[string]V, n),
	}
}

// NewText builds a text record by pairing headers and cells positionally.
// Extra cells are ignored; missing cells are omitted.
func NewText(headers, cells []string) *Text {
	rec := NewRecord[string](len(headers))
	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		rec.Set(h, cells[i])
	}
	return rec
}

// Set stores v under key.
func (r *Record[V]) Set(key string, v V) {
	if r.values == nil {
		r.values = make(map[string]V)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record[V]) Get(key string) (V, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Delete removes key, reporting whether it was present.
func (r *Record[V]) Delete(key string) bool {
	if _, ok := r.values[key]; !ok {
		return false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of keys.
func (r *Record[V]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns a copy of the keys in insertion order.
func (r *Record[V]) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// All iterates entries in insertion order.
func (r *Record[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}
