package descriptor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdef/pdef-go/generic"
)

// ListType is implemented by list descriptors.
type ListType interface {
	DataDescriptor
	Elem() DataDescriptor
}

// SetType is implemented by set descriptors.
type SetType interface {
	DataDescriptor
	Elem() DataDescriptor
}

// MapType is implemented by map descriptors.
type MapType interface {
	DataDescriptor
	Key() DataDescriptor
	Value() DataDescriptor
}

// ListDescriptor describes an ordered list with native type []E.
type ListDescriptor[E any] struct {
	linkState
	elemRef TypeRef
	elem    DataDescriptor
}

// NewList returns a list descriptor whose elements are described by elem.
func NewList[E any](elem TypeRef) *ListDescriptor[E] {
	return &ListDescriptor[E]{elemRef: elem}
}

// Kind returns KindList.
func (d *ListDescriptor[E]) Kind() Kind { return KindList }

// Name returns list<elem>.
func (d *ListDescriptor[E]) Name() string { return "list<" + nameOf(d.elem) + ">" }

// Elem returns the element descriptor.
func (d *ListDescriptor[E]) Elem() DataDescriptor { return d.elem }

func (*ListDescriptor[E]) sealed() {}

func (d *ListDescriptor[E]) link(l *linker) {
	d.elem = l.resolve(d.Name(), "element", d.elemRef)
}

// ToGeneric converts a []E to a generic.List, element by element.
func (d *ListDescriptor[E]) ToGeneric(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	items, ok := v.([]E)
	if !ok {
		return nil, convErr(d, v, nil)
	}

	out := make(generic.List, len(items))
	for i, item := range items {
		g, err := d.elem.ToGeneric(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", d.Name(), i, err)
		}
		out[i] = g
	}
	return out, nil
}

// FromGeneric converts a generic list or set to a []E.
func (d *ListDescriptor[E]) FromGeneric(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	items, ok := sequence(v)
	if !ok {
		return nil, convErr(d, v, nil)
	}

	out := make([]E, len(items))
	for i, item := range items {
		native, err := d.elem.FromGeneric(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", d.Name(), i, err)
		}
		if native == nil {
			continue
		}
		e, ok := native.(E)
		if !ok {
			return nil, convErr(d, native, fmt.Errorf("element %d has unexpected type", i))
		}
		out[i] = e
	}
	return out, nil
}

// ParseText decodes a JSON-shaped list literal.
func (d *ListDescriptor[E]) ParseText(s string) (any, error) { return parseLiteral(d, s) }

// FormatText renders the list as a JSON-shaped literal.
func (d *ListDescriptor[E]) FormatText(v any) (string, error) { return formatLiteral(d, v) }

// SetDescriptor describes an unordered set with native type map[E]struct{}.
type SetDescriptor[E comparable] struct {
	linkState
	elemRef TypeRef
	elem    DataDescriptor
}

// NewSet returns a set descriptor whose members are described by elem.
func NewSet[E comparable](elem TypeRef) *SetDescriptor[E] {
	return &SetDescriptor[E]{elemRef: elem}
}

// Kind returns KindSet.
func (d *SetDescriptor[E]) Kind() Kind { return KindSet }

// Name returns set<elem>.
func (d *SetDescriptor[E]) Name() string { return "set<" + nameOf(d.elem) + ">" }

// Elem returns the member descriptor.
func (d *SetDescriptor[E]) Elem() DataDescriptor { return d.elem }

func (*SetDescriptor[E]) sealed() {}

func (d *SetDescriptor[E]) link(l *linker) {
	d.elem = l.resolve(d.Name(), "element", d.elemRef)
}

// ToGeneric converts a map[E]struct{} to a *generic.Set.
// Members are ordered by their text form so output is deterministic.
func (d *SetDescriptor[E]) ToGeneric(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	members, ok := v.(map[E]struct{})
	if !ok {
		return nil, convErr(d, v, nil)
	}

	items := make([]any, 0, len(members))
	for m := range members {
		g, err := d.elem.ToGeneric(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name(), err)
		}
		items = append(items, g)
	}
	sortByText(len(items), func(i int) any { return items[i] }, func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return generic.NewSet(items...), nil
}

// FromGeneric converts a generic set or list to a map[E]struct{}.
func (d *SetDescriptor[E]) FromGeneric(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	items, ok := sequence(v)
	if !ok {
		return nil, convErr(d, v, nil)
	}

	out := make(map[E]struct{}, len(items))
	for _, item := range items {
		native, err := d.elem.FromGeneric(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name(), err)
		}
		if native == nil {
			continue
		}
		e, ok := native.(E)
		if !ok {
			return nil, convErr(d, native, errors.New("member has unexpected type"))
		}
		out[e] = struct{}{}
	}
	return out, nil
}

// ParseText decodes a JSON-shaped list literal into a set.
func (d *SetDescriptor[E]) ParseText(s string) (any, error) { return parseLiteral(d, s) }

// FormatText renders the set as a JSON-shaped list literal.
func (d *SetDescriptor[E]) FormatText(v any) (string, error) { return formatLiteral(d, v) }

// MapDescriptor describes a mapping with native type map[K]V.
type MapDescriptor[K comparable, V any] struct {
	linkState
	keyRef   TypeRef
	valueRef TypeRef
	key      DataDescriptor
	value    DataDescriptor
}

// NewMap returns a map descriptor.
func NewMap[K comparable, V any](key, value TypeRef) *MapDescriptor[K, V] {
	return &MapDescriptor[K, V]{keyRef: key, valueRef: value}
}

// Kind returns KindMap.
func (d *MapDescriptor[K, V]) Kind() Kind { return KindMap }

// Name returns map<key, value>.
func (d *MapDescriptor[K, V]) Name() string {
	return "map<" + nameOf(d.key) + ", " + nameOf(d.value) + ">"
}

// Key returns the key descriptor.
func (d *MapDescriptor[K, V]) Key() DataDescriptor { return d.key }

// Value returns the value descriptor.
func (d *MapDescriptor[K, V]) Value() DataDescriptor { return d.value }

func (*MapDescriptor[K, V]) sealed() {}

func (d *MapDescriptor[K, V]) link(l *linker) {
	d.key = l.resolve(d.Name(), "key", d.keyRef)
	d.value = l.resolve(d.Name(), "value", d.valueRef)
}

// ToGeneric converts a map[K]V to a *generic.Map.
// Go maps have no insertion order, so entries are sorted by key text.
func (d *MapDescriptor[K, V]) ToGeneric(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	native, ok := v.(map[K]V)
	if !ok {
		return nil, convErr(d, v, nil)
	}

	entries := make([]generic.Entry, 0, len(native))
	for k, val := range native {
		gk, err := d.key.ToGeneric(k)
		if err != nil {
			return nil, fmt.Errorf("%s key: %w", d.Name(), err)
		}
		gv, err := d.value.ToGeneric(val)
		if err != nil {
			return nil, fmt.Errorf("%s value: %w", d.Name(), err)
		}
		entries = append(entries, generic.Entry{Key: gk, Value: gv})
	}
	sortByText(len(entries), func(i int) any { return entries[i].Key }, func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	out := generic.NewMap()
	for _, e := range entries {
		out.Set(e.Key, e.Value)
	}
	return out, nil
}

// FromGeneric converts a generic map or field map to a map[K]V.
// String keys are parsed with the key descriptor, so JSON object keys work
// for any primitive key type.
func (d *MapDescriptor[K, V]) FromGeneric(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	entries, ok := mapEntries(v)
	if !ok {
		return nil, convErr(d, v, nil)
	}

	out := make(map[K]V, len(entries))
	for _, e := range entries {
		nk, err := d.key.FromGeneric(e.Key)
		if err != nil {
			return nil, fmt.Errorf("%s key: %w", d.Name(), err)
		}
		k, ok := nk.(K)
		if !ok {
			return nil, convErr(d, e.Key, errors.New("invalid map key"))
		}

		nv, err := d.value.FromGeneric(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s value: %w", d.Name(), err)
		}
		var val V
		if nv != nil {
			if val, ok = nv.(V); !ok {
				return nil, convErr(d, nv, errors.New("value has unexpected type"))
			}
		}
		out[k] = val
	}
	return out, nil
}

// ParseText decodes a JSON-shaped object literal into a map.
func (d *MapDescriptor[K, V]) ParseText(s string) (any, error) { return parseLiteral(d, s) }

// FormatText renders the map as a JSON-shaped object literal.
func (d *MapDescriptor[K, V]) FormatText(v any) (string, error) { return formatLiteral(d, v) }

// parseLiteral implements ParseText for non-primitive descriptors.
func parseLiteral(d DataDescriptor, s string) (any, error) {
	g, err := generic.ParseText(s)
	if err != nil {
		return nil, convErr(d, s, err)
	}
	return d.FromGeneric(g)
}

// formatLiteral implements FormatText for non-primitive descriptors.
func formatLiteral(d DataDescriptor, v any) (string, error) {
	g, err := d.ToGeneric(v)
	if err != nil {
		return "", err
	}
	return generic.FormatText(g)
}

func sequence(v any) ([]any, bool) {
	if items, ok := generic.AsList(v); ok {
		return items, true
	}
	if s, ok := v.(*generic.Set); ok {
		return s.Items(), true
	}
	return nil, false
}

func mapEntries(v any) ([]generic.Entry, bool) {
	switch v := v.(type) {
	case *generic.Map:
		return v.Entries(), true
	case *generic.Fields:
		entries := make([]generic.Entry, 0, v.Len())
		for _, name := range v.Names() {
			value, _ := v.Get(name)
			entries = append(entries, generic.Entry{Key: name, Value: value})
		}
		return entries, true
	case map[string]any:
		entries := make([]generic.Entry, 0, len(v))
		for k, value := range v {
			entries = append(entries, generic.Entry{Key: k, Value: value})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Key.(string) < entries[j].Key.(string)
		})
		return entries, true
	}
	return nil, false
}

func sortByText(n int, at func(int) any, swap func(i, j int)) {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i], _ = generic.FormatText(at(i))
	}
	sort.Sort(textSorter{keys: keys, swap: swap})
}

type textSorter struct {
	keys []string
	swap func(i, j int)
}

func (s textSorter) Len() int           { return len(s.keys) }
func (s textSorter) Less(i, j int) bool { return s.keys[i] < s.keys[j] }
func (s textSorter) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.swap(i, j)
}

func nameOf(d Descriptor) string {
	if d == nil {
		return "?"
	}
	return d.Name()
}
