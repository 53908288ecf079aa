// Package descriptor defines the runtime type model: immutable descriptors
// for primitives, collections, enums, messages and interfaces, and their
// conversions between native Go values and the generic object model.
//
// Descriptors are built in two phases. Constructors allocate skeletons whose
// cross references are thunks; Registry.Link (or Link) resolves every thunk,
// computes inherited fields and validates the graph. After linking a
// descriptor is read-only and safe for concurrent use.
package descriptor

import (
	"errors"
	"fmt"
	"reflect"
)

// Kind identifies the type tag of a descriptor.
type Kind int

const (
	KindBool Kind = iota
	KindInt16
	KindInt32
	KindInt64
	KindFloat  // 32-bit float
	KindDouble // 64-bit float
	KindString
	KindDatetime
	KindVoid

	KindList
	KindSet
	KindMap
	KindEnum
	KindMessage
	KindInterface
	KindVariable
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindDatetime:
		return "Datetime"
	case KindVoid:
		return "Void"
	case KindList:
		return "List"
	case KindSet:
		return "Set"
	case KindMap:
		return "Map"
	case KindEnum:
		return "Enum"
	case KindMessage:
		return "Message"
	case KindInterface:
		return "Interface"
	case KindVariable:
		return "Variable"
	default:
		return "Unknown"
	}
}

// IsPrimitive reports whether the kind is a primitive with a flat text form.
func (k Kind) IsPrimitive() bool {
	return k <= KindVoid
}

// Descriptor is the base interface for all descriptors.
type Descriptor interface {
	// Kind returns the type tag for type switching.
	Kind() Kind

	// Name returns a human-readable type name.
	Name() string

	// Ensure only types in this package can implement Descriptor.
	sealed()
}

// DataDescriptor describes a value type that can cross the wire.
// All conversions accept nil and return nil for it.
type DataDescriptor interface {
	Descriptor

	// ToGeneric converts a native value to the generic object model.
	ToGeneric(v any) (any, error)

	// FromGeneric converts a generic value to a native value.
	FromGeneric(v any) (any, error)

	// ParseText parses the flat text form used in paths and query strings.
	ParseText(s string) (any, error)

	// FormatText renders a native value in its flat text form.
	FormatText(v any) (string, error)
}

// TypeRef lazily resolves a data descriptor. It is called once, at link time,
// which allows messages to reference themselves or later declarations.
type TypeRef func() DataDescriptor

// Of returns a TypeRef for an already constructed descriptor.
func Of(d DataDescriptor) TypeRef {
	return func() DataDescriptor { return d }
}

// Ref returns a result thunk for an already constructed descriptor.
func Ref(d Descriptor) func() Descriptor {
	return func() Descriptor { return d }
}

var (
	// ErrNotLinked is returned when an unlinked descriptor is used.
	ErrNotLinked = errors.New("descriptor: not linked")

	// ErrLinked is the panic value for mutating a linked descriptor.
	ErrLinked = errors.New("descriptor: already linked")
)

// ConversionError reports a value that a descriptor cannot convert.
type ConversionError struct {
	Type  string
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("descriptor: cannot convert %T to %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("descriptor: cannot convert %T to %s", e.Value, e.Type)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func convErr(d Descriptor, v any, err error) error {
	return &ConversionError{Type: d.Name(), Value: v, Err: err}
}

// linkState tracks the two-phase lifecycle of a composite descriptor.
type linkState struct {
	linked bool
}

func (s *linkState) isLinked() bool { return s.linked }
func (s *linkState) markLinked()    { s.linked = true }

func (s *linkState) mustBeMutable() {
	if s.linked {
		panic(ErrLinked)
	}
}

// isNil reports whether v is nil or a typed nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
