// Package generic defines the language-neutral object model used as the
// serialization boundary between descriptors and text encoders.
//
// A generic value is one of: nil, bool, int16, int32, int64, float32, float64,
// string, List, *Set, *Map or *Fields. Descriptors convert native Go values
// to and from these shapes; encoders only ever see generic values.
package generic

import (
	"math"
)

// Kind identifies the shape of a generic value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt   // int16, int32 or int64
	KindFloat // float32 or float64
	KindString
	KindList
	KindSet
	KindMap
	KindFields
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindSet:
		return "Set"
	case KindMap:
		return "Map"
	case KindFields:
		return "Fields"
	default:
		return "Invalid"
	}
}

// KindOf classifies v. Values outside the model are KindInvalid.
func KindOf(v any) Kind {
	switch v := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int16, int32, int64, int:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case List, []any:
		return KindList
	case *Set:
		if v == nil {
			return KindNull
		}
		return KindSet
	case *Map:
		if v == nil {
			return KindNull
		}
		return KindMap
	case *Fields:
		if v == nil {
			return KindNull
		}
		return KindFields
	default:
		return KindInvalid
	}
}

// List is an ordered sequence of generic values.
type List []any

// Set is an unordered collection of unique generic values.
// Iteration follows insertion order so that output is deterministic.
type Set struct {
	items []any
}

// NewSet returns a set holding the given items, dropping duplicates.
func NewSet(items ...any) *Set {
	s := &Set{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts v unless an equal value is already present.
// It reports whether the set changed.
func (s *Set) Add(v any) bool {
	if s.Contains(v) {
		return false
	}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether the set holds a value equal to v.
func (s *Set) Contains(v any) bool {
	for _, item := range s.items {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the members in insertion order.
func (s *Set) Items() []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Entry is a single key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered mapping from generic keys to generic values.
type Map struct {
	entries []Entry
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{}
}

// Set stores value under key, replacing an equal key in place.
func (m *Map) Set(key, value any) {
	for i := range m.entries {
		if Equal(m.entries[i].Key, key) {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, e := range m.entries {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Fields is an ordered field-name to value map used for messages.
type Fields struct {
	names  []string
	values map[string]any
}

// NewFields returns an empty field map.
func NewFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Set stores value under name. Re-setting a name keeps its original position.
func (f *Fields) Set(name string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Get returns the value stored under name.
func (f *Fields) Get(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.values[name]
	return v, ok
}

// Names returns field names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Equal reports whether a and b are structurally equal generic values.
// Integers and floats compare by numeric value regardless of width.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if isNumber(ka) && isNumber(kb) {
		return numbersEqual(a, b, ka, kb)
	}
	if ka != kb {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindString:
		return a.(string) == b.(string)
	case KindList:
		la, lb := asList(a), asList(b)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	case KindSet:
		sa, sb := a.(*Set), b.(*Set)
		if sa.Len() != sb.Len() {
			return false
		}
		for _, item := range sa.items {
			if !sb.Contains(item) {
				return false
			}
		}
		return true
	case KindMap:
		ma, mb := a.(*Map), b.(*Map)
		if ma.Len() != mb.Len() {
			return false
		}
		for _, e := range ma.entries {
			v, ok := mb.Get(e.Key)
			if !ok || !Equal(e.Value, v) {
				return false
			}
		}
		return true
	case KindFields:
		fa, fb := a.(*Fields), b.(*Fields)
		if fa.Len() != fb.Len() {
			return false
		}
		for _, name := range fa.names {
			v, ok := fb.values[name]
			if !ok || !Equal(fa.values[name], v) {
				return false
			}
		}
		return true
	}
	return false
}

func isNumber(k Kind) bool {
	return k == KindInt || k == KindFloat
}

func numbersEqual(a, b any, ka, kb Kind) bool {
	if ka == KindInt && kb == KindInt {
		ia, _ := AsInt64(a)
		ib, _ := AsInt64(b)
		return ia == ib
	}
	fa, _ := AsFloat64(a)
	fb, _ := AsFloat64(b)
	return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
}

func asList(v any) []any {
	switch v := v.(type) {
	case List:
		return v
	case []any:
		return v
	}
	return nil
}

// AsList returns v as a list if it is one.
func AsList(v any) ([]any, bool) {
	switch v := v.(type) {
	case List:
		return v, true
	case []any:
		return v, true
	}
	return nil, false
}

// AsInt64 widens any generic integer to int64.
func AsInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// AsFloat64 widens any generic number to float64.
func AsFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
