package descriptor

import (
	"reflect"
	"time"
)

type nativeTyped interface {
	nativeType() reflect.Type
}

func (*ListDescriptor[E]) nativeType() reflect.Type { return reflect.TypeFor[[]E]() }
func (*SetDescriptor[E]) nativeType() reflect.Type { return reflect.TypeFor[map[E]struct{}]() }
func (*MapDescriptor[K, V]) nativeType() reflect.Type { return reflect.TypeFor[map[K]V]() }
func (*VariableDescriptor) nativeType() reflect.Type { return reflect.TypeFor[any]() }

var primitiveTypes = map[Kind]reflect.Type{
	KindBool:     reflect.TypeFor[bool](),
	KindInt16:    reflect.TypeFor[int16](),
	KindInt32:    reflect.TypeFor[int32](),
	KindInt64:    reflect.TypeFor[int64](),
	KindFloat:    reflect.TypeFor[float32](),
	KindDouble:   reflect.TypeFor[float64](),
	KindString:   reflect.TypeFor[string](),
	KindDatetime: reflect.TypeFor[time.Time](),
}

// NativeType returns the Go type that FromGeneric produces for d.
// It returns nil for void and for enums without members.
func NativeType(d DataDescriptor) reflect.Type {
	switch d := d.(type) {
	case *PrimitiveDescriptor:
		return primitiveTypes[d.kind]
	case *EnumDescriptor:
		if len(d.members) == 0 {
			return nil
		}
		return reflect.TypeOf(d.members[0].Value)
	case *MessageDescriptor:
		if d.newFn == nil {
			return nil
		}
		return reflect.TypeOf(d.newFn())
	case nativeTyped:
		return d.nativeType()
	}
	return nil
}
