package descriptor

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/pdef/pdef-go/generic"
)

// FieldDescriptor describes a single message field with bound accessors.
type FieldDescriptor struct {
	name          string
	typeRef       TypeRef
	typ           DataDescriptor
	get           func(msg any) any
	set           func(msg any, v any) error
	discriminator bool
}

// Field returns a field descriptor for a message of type M holding values of
// type V. The accessors are called with the message pointer produced by the
// message's builder factory.
func Field[M any, V any](name string, typ TypeRef, get func(M) V, set func(M, V)) *FieldDescriptor {
	return &FieldDescriptor{
		name:    name,
		typeRef: typ,
		get: func(msg any) any {
			m, ok := msg.(M)
			if !ok {
				return nil
			}
			return get(m)
		},
		set: func(msg any, v any) error {
			m, ok := msg.(M)
			if !ok {
				return fmt.Errorf("field %s: message has type %T", name, msg)
			}
			value, ok := v.(V)
			if !ok {
				return fmt.Errorf("field %s: value has type %T", name, v)
			}
			set(m, value)
			return nil
		},
	}
}

// AsDiscriminator marks the field as the discriminator of its hierarchy.
func (f *FieldDescriptor) AsDiscriminator() *FieldDescriptor {
	f.discriminator = true
	return f
}

// Name returns the field name.
func (f *FieldDescriptor) Name() string { return f.name }

// Type returns the linked value descriptor.
func (f *FieldDescriptor) Type() DataDescriptor { return f.typ }

// IsDiscriminator reports whether the field selects subtypes.
func (f *FieldDescriptor) IsDiscriminator() bool { return f.discriminator }

// Get returns the field value of msg.
func (f *FieldDescriptor) Get(msg any) any { return f.get(msg) }

// Set assigns v to the field of msg.
func (f *FieldDescriptor) Set(msg any, v any) error { return f.set(msg, v) }

// MessageDescriptor describes a message type, its fields and its subtypes.
type MessageDescriptor struct {
	linkState
	name           string
	newFn          func() any
	base           *MessageDescriptor
	declaredFields []*FieldDescriptor
	fields         []*FieldDescriptor
	discriminator  *FieldDescriptor
	subtypeRefs    []subtypeRef
	subtypes       map[any]*MessageDescriptor
	form           bool
	typ            reflect.Type
	laidOut        bool
	layoutOK       bool
}

type subtypeRef struct {
	value any
	ref   func() *MessageDescriptor
}

// NewMessage returns a message skeleton. newFn must return a fresh pointer to
// the native message; it is the builder factory used when parsing.
func NewMessage(name string, newFn func() any) *MessageDescriptor {
	return &MessageDescriptor{name: name, newFn: newFn}
}

// Extends sets the base message. Inherited fields precede declared ones.
func (d *MessageDescriptor) Extends(base *MessageDescriptor) *MessageDescriptor {
	d.mustBeMutable()
	d.base = base
	return d
}

// WithFields appends declared fields.
func (d *MessageDescriptor) WithFields(fields ...*FieldDescriptor) *MessageDescriptor {
	d.mustBeMutable()
	d.declaredFields = append(d.declaredFields, fields...)
	return d
}

// Subtype registers the subtype selected by a discriminator value.
// The subtype is resolved at link time so it may be declared later.
func (d *MessageDescriptor) Subtype(value any, sub func() *MessageDescriptor) *MessageDescriptor {
	d.mustBeMutable()
	d.subtypeRefs = append(d.subtypeRefs, subtypeRef{value: value, ref: sub})
	return d
}

// AsForm marks the message as a form whose fields are flattened into
// request parameters.
func (d *MessageDescriptor) AsForm() *MessageDescriptor {
	d.mustBeMutable()
	d.form = true
	return d
}

// Kind returns KindMessage.
func (d *MessageDescriptor) Kind() Kind { return KindMessage }

// Name returns the message name.
func (d *MessageDescriptor) Name() string { return d.name }

func (*MessageDescriptor) sealed() {}

// Base returns the base message or nil.
func (d *MessageDescriptor) Base() *MessageDescriptor { return d.base }

// DeclaredFields returns the fields declared at this level only.
func (d *MessageDescriptor) DeclaredFields() []*FieldDescriptor { return d.declaredFields }

// Fields returns inherited fields followed by declared fields.
func (d *MessageDescriptor) Fields() []*FieldDescriptor { return d.fields }

// Field returns the field with the given name or nil.
func (d *MessageDescriptor) Field(name string) *FieldDescriptor {
	for _, f := range d.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Discriminator returns the discriminator field of the hierarchy or nil.
func (d *MessageDescriptor) Discriminator() *FieldDescriptor { return d.discriminator }

// Subtypes returns the linked subtype registry keyed by discriminator value.
func (d *MessageDescriptor) Subtypes() map[any]*MessageDescriptor { return d.subtypes }

// IsForm reports whether the message may be flattened into parameters.
func (d *MessageDescriptor) IsForm() bool { return d.form }

// IsException reports whether native values implement error.
func (d *MessageDescriptor) IsException() bool {
	return d.typ != nil && d.typ.Implements(errorType)
}

// New returns a fresh native message.
func (d *MessageDescriptor) New() any { return d.newFn() }

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func (d *MessageDescriptor) link(l *linker) {
	if d.newFn == nil {
		l.errorf("message %s: missing builder factory", d.name)
		return
	}
	d.typ = reflect.TypeOf(d.newFn())

	if !d.layout(l) {
		return
	}
	if d.base != nil {
		l.link(d.base)
	}

	for _, f := range d.declaredFields {
		f.typ = l.resolve(d.name, "field "+f.name, f.typeRef)
	}

	if len(d.subtypeRefs) > 0 && d.discriminator == nil {
		l.errorf("message %s: subtypes registered without a discriminator field", d.name)
	}
	d.subtypes = make(map[any]*MessageDescriptor, len(d.subtypeRefs))
	for _, s := range d.subtypeRefs {
		var sub *MessageDescriptor
		if s.ref != nil {
			sub = s.ref()
		}
		if sub == nil {
			l.errorf("message %s: unresolved subtype for %v", d.name, s.value)
			continue
		}
		if sub != d && !sub.inherits(d) {
			l.errorf("message %s: subtype %s does not extend it", d.name, sub.name)
			continue
		}
		d.subtypes[s.value] = sub
		l.link(sub)
	}
}

// layout computes the field list and discriminator. It only follows base
// pointers, so it can run before any thunk in the graph is resolved.
func (d *MessageDescriptor) layout(l *linker) bool {
	if d.laidOut {
		return d.layoutOK
	}
	d.laidOut = true

	seen := map[*MessageDescriptor]bool{d: true}
	for b := d.base; b != nil; b = b.base {
		if seen[b] {
			l.errorf("message %s: circular inheritance", d.name)
			return false
		}
		seen[b] = true
	}
	if d.base != nil && !d.base.layout(l) {
		return false
	}

	d.fields = make([]*FieldDescriptor, 0, len(d.declaredFields))
	names := make(map[string]bool)
	if d.base != nil {
		d.fields = append(d.fields, d.base.fields...)
		d.discriminator = d.base.discriminator
		for _, f := range d.base.fields {
			names[f.name] = true
		}
	}
	for _, f := range d.declaredFields {
		if names[f.name] {
			l.errorf("message %s: duplicate field %s", d.name, f.name)
		}
		names[f.name] = true
		d.fields = append(d.fields, f)

		if f.discriminator {
			if d.discriminator != nil {
				l.errorf("message %s: more than one discriminator field (%s, %s)",
					d.name, d.discriminator.name, f.name)
				continue
			}
			d.discriminator = f
		}
	}

	d.layoutOK = true
	return true
}

// inherits reports whether base is a proper ancestor of d.
func (d *MessageDescriptor) inherits(base *MessageDescriptor) bool {
	for b := d.base; b != nil; b = b.base {
		if b == base {
			return true
		}
	}
	return false
}

// forType returns the descriptor in this hierarchy whose native type is t.
func (d *MessageDescriptor) forType(t reflect.Type) *MessageDescriptor {
	if t == d.typ {
		return d
	}
	for _, sub := range d.subtypes {
		if sub == d {
			continue
		}
		if found := sub.forType(t); found != nil {
			return found
		}
	}
	return nil
}

// Matches reports whether v is an instance of this message or of one of
// its registered subtypes.
func (d *MessageDescriptor) Matches(v any) bool {
	if isNil(v) || !d.linked {
		return false
	}
	return d.forType(reflect.TypeOf(v)) != nil
}

// ToGeneric converts a native message to *generic.Fields, omitting nil
// values. Subtype instances are serialized with their own descriptor.
func (d *MessageDescriptor) ToGeneric(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	target := d.forType(reflect.TypeOf(v))
	if target == nil {
		return nil, convErr(d, v, nil)
	}

	out := generic.NewFields()
	for _, f := range target.fields {
		g, err := f.typ.ToGeneric(f.get(v))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", target.name, f.name, err)
		}
		if g == nil {
			continue
		}
		out.Set(f.name, g)
	}
	return out, nil
}

// FromGeneric builds a native message from a field map. When the
// discriminator selects a registered subtype the subtype builds the value;
// unknown or absent discriminator values build this type.
func (d *MessageDescriptor) FromGeneric(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if !d.linked {
		return nil, ErrNotLinked
	}
	lookup, ok := fieldLookup(v)
	if !ok {
		return nil, convErr(d, v, nil)
	}

	if sub := d.subtypeFor(lookup); sub != nil {
		return sub.FromGeneric(v)
	}

	msg := d.newFn()
	for _, f := range d.fields {
		raw, ok := lookup(f.name)
		if !ok || raw == nil {
			continue
		}
		native, err := f.typ.FromGeneric(raw)
		if err != nil {
			if f.discriminator {
				// Unknown subtype values keep the builder default.
				continue
			}
			return nil, fmt.Errorf("%s.%s: %w", d.name, f.name, err)
		}
		if native == nil {
			continue
		}
		if err := f.set(msg, native); err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return msg, nil
}

func (d *MessageDescriptor) subtypeFor(lookup func(string) (any, bool)) *MessageDescriptor {
	if d.discriminator == nil || len(d.subtypes) == 0 {
		return nil
	}
	raw, ok := lookup(d.discriminator.name)
	if !ok || raw == nil {
		return nil
	}
	value, err := d.discriminator.typ.FromGeneric(raw)
	if err != nil || value == nil {
		return nil
	}
	sub := d.subtypes[value]
	if sub == nil || sub == d {
		return nil
	}
	return sub
}

// ParseText decodes a JSON-shaped object literal into a message.
func (d *MessageDescriptor) ParseText(s string) (any, error) { return parseLiteral(d, s) }

// FormatText renders the message as a JSON-shaped object literal.
func (d *MessageDescriptor) FormatText(v any) (string, error) { return formatLiteral(d, v) }

func fieldLookup(v any) (func(string) (any, bool), bool) {
	switch v := v.(type) {
	case *generic.Fields:
		return v.Get, true
	case *generic.Map:
		return func(name string) (any, bool) { return v.Get(name) }, true
	case map[string]any:
		return func(name string) (any, bool) {
			value, ok := v[name]
			return value, ok
		}, true
	}
	return nil, false
}

// ErrNotMessage is returned when a descriptor is not a message.
var ErrNotMessage = errors.New("descriptor: not a message")

// AsMessage returns d as a message descriptor.
func AsMessage(d Descriptor) (*MessageDescriptor, error) {
	md, ok := d.(*MessageDescriptor)
	if !ok {
		return nil, ErrNotMessage
	}
	return md, nil
}
