package descriptor

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// EnumMember is a single enum value.
type EnumMember struct {
	// Name is the symbolic name. Its lowercase form is the wire representation.
	Name string

	// Value is the native Go value. It must be comparable.
	Value any
}

// EnumDescriptor describes an enumeration. Its generic form is the lowercase
// symbolic name of the member.
type EnumDescriptor struct {
	name    string
	members []EnumMember
	byName  map[string]any
	byValue map[any]string
}

// NewEnum returns an enum descriptor with the given members.
func NewEnum(name string, members ...EnumMember) *EnumDescriptor {
	d := &EnumDescriptor{
		name:    name,
		members: members,
		byName:  make(map[string]any, len(members)),
		byValue: make(map[any]string, len(members)),
	}
	for _, m := range members {
		lower := strings.ToLower(m.Name)
		d.byName[lower] = m.Value
		d.byValue[m.Value] = lower
	}
	return d
}

// Kind returns KindEnum.
func (d *EnumDescriptor) Kind() Kind { return KindEnum }

// Name returns the enum type name.
func (d *EnumDescriptor) Name() string { return d.name }

// Members returns the enum members in declaration order.
func (d *EnumDescriptor) Members() []EnumMember { return d.members }

func (*EnumDescriptor) sealed() {}

// Find returns the native value for a symbolic name, ignoring case.
func (d *EnumDescriptor) Find(name string) (any, bool) {
	v, ok := d.byName[strings.ToLower(name)]
	return v, ok
}

// ToGeneric returns the lowercase member name of v. The zero value of a
// native enum type that is not a member means unset and converts to nil.
func (d *EnumDescriptor) ToGeneric(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	name, ok := d.byValue[v]
	if !ok && reflect.ValueOf(v).IsZero() {
		return nil, nil
	}
	if !ok {
		return nil, convErr(d, v, fmt.Errorf("unknown enum value %v", v))
	}
	return name, nil
}

// FromGeneric returns the native value for a member name.
func (d *EnumDescriptor) FromGeneric(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, convErr(d, v, nil)
	}
	native, ok := d.Find(s)
	if !ok {
		return nil, convErr(d, v, fmt.Errorf("unknown enum name %q", s))
	}
	return native, nil
}

// ParseText accepts a bare member name or a JSON string literal.
func (d *EnumDescriptor) ParseText(s string) (any, error) {
	if unquoted, err := strconv.Unquote(s); err == nil && strings.HasPrefix(s, `"`) {
		s = unquoted
	}
	return d.FromGeneric(s)
}

// FormatText returns the bare lowercase member name.
func (d *EnumDescriptor) FormatText(v any) (string, error) {
	g, err := d.ToGeneric(v)
	if err != nil || g == nil {
		return "", err
	}
	return g.(string), nil
}
