package vm

import "sort"

// Bindings maps variable names to values for one program run.
//
// A Bindings may record a parent, but lookups never consult it: walc has a
// single flat global scope.
type Bindings struct {
	parent *Bindings
	values map[string]float64
}

// NewBindings creates an empty table. parent may be nil.
func NewBindings(parent *Bindings) *Bindings {
	return &Bindings{
		parent: parent,
		values: make(map[string]float64),
	}
}

// Parent returns the table this one was created under, if any.
func (b *Bindings) Parent() *Bindings {
	return b.parent
}

// Set binds name to value, replacing any previous binding.
func (b *Bindings) Set(name string, value float64) {
	b.values[name] = value
}

// Get returns the value bound to name in this table.
func (b *Bindings) Get(name string) (float64, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Len returns the number of bound names.
func (b *Bindings) Len() int {
	return len(b.values)
}

// Names returns the bound names in sorted order.
func (b *Bindings) Names() []string {
	names := make([]string, 0, len(b.values))
	for name := range b.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
