package descriptor

import (
	"context"
	"fmt"
)

// InvokeFunc calls a method on a concrete service object.
// Generated code binds one per method so no reflection is needed.
type InvokeFunc func(ctx context.Context, target any, args []any) (any, error)

// ArgDescriptor describes a method argument.
type ArgDescriptor struct {
	name    string
	typeRef TypeRef
	typ     DataDescriptor
}

// Arg returns an argument descriptor.
func Arg(name string, typ TypeRef) *ArgDescriptor {
	return &ArgDescriptor{name: name, typeRef: typ}
}

// Name returns the argument name.
func (a *ArgDescriptor) Name() string { return a.name }

// Type returns the linked argument type.
func (a *ArgDescriptor) Type() DataDescriptor { return a.typ }

// MethodDescriptor describes an interface method.
type MethodDescriptor struct {
	linkState
	name      string
	args      []*ArgDescriptor
	resultRef func() Descriptor
	result    Descriptor
	excRef    func() *MessageDescriptor
	exc       *MessageDescriptor
	post      bool
	index     bool
	invoke    InvokeFunc
	iface     *InterfaceDescriptor
}

// NewMethod returns a method skeleton. result may return a DataDescriptor
// (a remote method) or an *InterfaceDescriptor (a chained method).
func NewMethod(name string, result func() Descriptor, invoke InvokeFunc) *MethodDescriptor {
	return &MethodDescriptor{name: name, resultRef: result, invoke: invoke}
}

// WithArgs appends arguments in declaration order.
func (m *MethodDescriptor) WithArgs(args ...*ArgDescriptor) *MethodDescriptor {
	m.mustBeMutable()
	m.args = append(m.args, args...)
	return m
}

// WithExc sets the declared exception.
func (m *MethodDescriptor) WithExc(exc func() *MessageDescriptor) *MethodDescriptor {
	m.mustBeMutable()
	m.excRef = exc
	return m
}

// AsPost requires arguments to arrive in a POST body.
func (m *MethodDescriptor) AsPost() *MethodDescriptor {
	m.mustBeMutable()
	m.post = true
	return m
}

// AsIndex makes the method the interface fallback with no literal path name.
func (m *MethodDescriptor) AsIndex() *MethodDescriptor {
	m.mustBeMutable()
	m.index = true
	return m
}

// Name returns the method name.
func (m *MethodDescriptor) Name() string { return m.name }

// Args returns the arguments in declaration order.
func (m *MethodDescriptor) Args() []*ArgDescriptor { return m.args }

// Result returns the linked result descriptor.
func (m *MethodDescriptor) Result() Descriptor { return m.result }

// Interface returns the interface declaring the method.
func (m *MethodDescriptor) Interface() *InterfaceDescriptor { return m.iface }

// IsRemote reports whether the result is data, which terminates a chain.
func (m *MethodDescriptor) IsRemote() bool {
	return m.result != nil && m.result.Kind() != KindInterface
}

// IsPost reports whether arguments come from a POST body.
func (m *MethodDescriptor) IsPost() bool { return m.post }

// IsIndex reports whether the method is the interface fallback.
func (m *MethodDescriptor) IsIndex() bool { return m.index }

// Exc returns the declared exception of the method, or the interface
// default when the method declares none.
func (m *MethodDescriptor) Exc() *MessageDescriptor {
	if m.exc != nil {
		return m.exc
	}
	if m.iface != nil {
		return m.iface.exc
	}
	return nil
}

// Invoke calls the method on target.
func (m *MethodDescriptor) Invoke(ctx context.Context, target any, args []any) (any, error) {
	if m.invoke == nil {
		return nil, fmt.Errorf("descriptor: method %s is not bound", m.name)
	}
	return m.invoke(ctx, target, args)
}

// String returns Interface.method.
func (m *MethodDescriptor) String() string {
	if m.iface != nil {
		return m.iface.name + "." + m.name
	}
	return m.name
}

func (m *MethodDescriptor) link(l *linker) {
	owner := m.String()
	if m.resultRef == nil {
		l.errorf("method %s: missing result", owner)
	} else if m.result = m.resultRef(); m.result == nil {
		l.errorf("method %s: unresolved result", owner)
	} else {
		switch m.result.(type) {
		case DataDescriptor, *InterfaceDescriptor:
			l.link(m.result)
		default:
			l.errorf("method %s: result %s is neither data nor an interface", owner, m.result.Name())
		}
	}

	for _, a := range m.args {
		a.typ = l.resolve(owner, "arg "+a.name, a.typeRef)
	}

	if m.excRef != nil {
		m.exc = l.resolveExc(owner, m.excRef)
	}
}

// InterfaceDescriptor describes a service interface.
type InterfaceDescriptor struct {
	linkState
	name    string
	methods []*MethodDescriptor
	byName  map[string]*MethodDescriptor
	index   *MethodDescriptor
	excRef  func() *MessageDescriptor
	exc     *MessageDescriptor
}

// NewInterface returns an interface skeleton.
func NewInterface(name string) *InterfaceDescriptor {
	return &InterfaceDescriptor{name: name}
}

// WithMethods appends methods in declaration order.
func (d *InterfaceDescriptor) WithMethods(methods ...*MethodDescriptor) *InterfaceDescriptor {
	d.mustBeMutable()
	for _, m := range methods {
		m.iface = d
	}
	d.methods = append(d.methods, methods...)
	return d
}

// WithExc sets the default exception for methods that declare none.
func (d *InterfaceDescriptor) WithExc(exc func() *MessageDescriptor) *InterfaceDescriptor {
	d.mustBeMutable()
	d.excRef = exc
	return d
}

// Kind returns KindInterface.
func (d *InterfaceDescriptor) Kind() Kind { return KindInterface }

// Name returns the interface name.
func (d *InterfaceDescriptor) Name() string { return d.name }

func (*InterfaceDescriptor) sealed() {}

// Methods returns methods in declaration order.
func (d *InterfaceDescriptor) Methods() []*MethodDescriptor { return d.methods }

// FindMethod returns the method with the given name or nil.
func (d *InterfaceDescriptor) FindMethod(name string) *MethodDescriptor {
	if d.byName != nil {
		return d.byName[name]
	}
	for _, m := range d.methods {
		if m.name == name {
			return m
		}
	}
	return nil
}

// IndexMethod returns the fallback method or nil.
func (d *InterfaceDescriptor) IndexMethod() *MethodDescriptor { return d.index }

// Exc returns the interface default exception or nil.
func (d *InterfaceDescriptor) Exc() *MessageDescriptor { return d.exc }

func (d *InterfaceDescriptor) link(l *linker) {
	d.byName = make(map[string]*MethodDescriptor, len(d.methods))
	d.index = nil
	for _, m := range d.methods {
		if _, dup := d.byName[m.name]; dup {
			l.errorf("interface %s: duplicate method %s", d.name, m.name)
		}
		d.byName[m.name] = m

		if m.index {
			if d.index != nil {
				l.errorf("interface %s: more than one index method (%s, %s)", d.name, d.index.name, m.name)
				continue
			}
			d.index = m
		}
	}

	if d.excRef != nil {
		d.exc = l.resolveExc(d.name, d.excRef)
	}
	for _, m := range d.methods {
		l.link(m)
	}
}
