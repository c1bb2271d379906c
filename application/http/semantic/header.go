package semantic

import (
	"slices"
	"sort"
)

// Headers is an ordered multimap from field name to field values.
//
// Names are kept exactly as given: no canonicalization is applied, so
// "Content-Type" and "content-type" are different entries.
// Names are iterated in order of first appearance.
//
// The zero value is an empty, ready to use Headers.
type Headers struct {
	names      []string
	underlying map[string][]string
}

// NewHeaders creates headers from a plain map.
// Map iteration order is random, so names are ordered lexically.
func NewHeaders(initial map[string][]string) Headers {
	var h Headers

	names := make([]string, 0, len(initial))
	for k := range initial {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		h.Set(name, initial[name]...)
	}

	return h
}

func (h *Headers) init() {
	if h.underlying == nil {
		h.underlying = make(map[string][]string)
	}
}

// Len returns the number of distinct names.
func (h *Headers) Len() int { return len(h.names) }

// Names returns distinct names in order of first appearance.
func (h *Headers) Names() []string { return slices.Clone(h.names) }

// Fields returns all the key-values in the header.
func (h *Headers) Fields() map[string][]string {
	clone := make(map[string][]string, len(h.underlying))
	for k, v := range h.underlying {
		clone[k] = slices.Clone(v)
	}

	return clone
}

// Get assumes the field is a singleton field.
// Even if key has multiple values, it will only return the first element of values.
// For list-based field, use [Headers.Values].
func (h *Headers) Get(key string) (value string, ok bool) {
	v, ok := h.underlying[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Values returns every value of key in the order they were added.
func (h *Headers) Values(key string) (values []string, ok bool) {
	values, ok = h.underlying[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}

// Set overwrites existing values instead of appending to them.
// Calling Set without values removes the key.
// For accumulating values, use [Headers.Add].
func (h *Headers) Set(key string, values ...string) {
	if len(values) == 0 {
		h.Del(key)
		return
	}

	h.init()
	if _, ok := h.underlying[key]; !ok {
		h.names = append(h.names, key)
	}
	h.underlying[key] = slices.Clone(values)
}

// Add appends value to the values of key, keeping previous ones.
func (h *Headers) Add(key, value string) {
	h.init()
	if _, ok := h.underlying[key]; !ok {
		h.names = append(h.names, key)
	}
	h.underlying[key] = append(h.underlying[key], value)
}

func (h *Headers) Del(key string) {
	if _, ok := h.underlying[key]; !ok {
		return
	}

	delete(h.underlying, key)
	h.names = slices.DeleteFunc(h.names, func(name string) bool { return name == key })
}

// Each calls fn for every (name, value) pair.
// Names follow [Headers.Names] order, values follow insertion order.
func (h *Headers) Each(fn func(name, value string)) {
	for _, name := range h.names {
		for _, value := range h.underlying[name] {
			fn(name, value)
		}
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() Headers {
	clone := Headers{names: slices.Clone(h.names)}
	if h.underlying != nil {
		clone.underlying = h.Fields()
	}
	return clone
}
