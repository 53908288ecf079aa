package descriptor

import (
	"errors"
	"fmt"
	"sync"
)

// Registry holds the named descriptors of a schema. It is populated once at
// startup, linked, and then only read.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
	order  []Descriptor
	errs   []error
	linked bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Add registers named descriptors. Duplicate names are reported by Link.
func (r *Registry) Add(ds ...Descriptor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.linked {
		panic(ErrLinked)
	}
	for _, d := range ds {
		if d == nil {
			continue
		}
		if prev, ok := r.byName[d.Name()]; ok && prev != d {
			r.errs = append(r.errs, fmt.Errorf("descriptor: duplicate name %s", d.Name()))
			continue
		}
		r.byName[d.Name()] = d
		r.order = append(r.order, d)
	}
	return r
}

// Link resolves every thunk reachable from the registered descriptors,
// computes inherited fields, validates the graph and freezes it.
// All configuration errors are returned together.
func (r *Registry) Link() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.linked {
		return nil
	}

	l := newLinker()
	l.errs = append(l.errs, r.errs...)
	for _, d := range r.order {
		l.link(d)
	}
	if err := l.finish(); err != nil {
		return err
	}
	r.linked = true
	return nil
}

// Linked reports whether Link completed successfully.
func (r *Registry) Linked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.linked
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Message returns the message registered under name or nil.
func (r *Registry) Message(name string) *MessageDescriptor {
	d, _ := r.Lookup(name).(*MessageDescriptor)
	return d
}

// Interface returns the interface registered under name or nil.
func (r *Registry) Interface(name string) *InterfaceDescriptor {
	d, _ := r.Lookup(name).(*InterfaceDescriptor)
	return d
}

// Enum returns the enum registered under name or nil.
func (r *Registry) Enum(name string) *EnumDescriptor {
	d, _ := r.Lookup(name).(*EnumDescriptor)
	return d
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

// Link links a standalone descriptor graph without a registry.
func Link(ds ...Descriptor) error {
	l := newLinker()
	for _, d := range ds {
		l.link(d)
	}
	return l.finish()
}

// MustLink is like Link but panics on error. It is intended for
// package-level descriptor graphs built at init time.
func MustLink(ds ...Descriptor) {
	if err := Link(ds...); err != nil {
		panic(err)
	}
}

type linkable interface {
	link(l *linker)
	isLinked() bool
	markLinked()
}

// linker performs the resolution pass. Visiting is tracked per node so
// cyclic graphs terminate; nodes are only marked linked once the whole
// pass succeeds.
type linker struct {
	seen    map[linkable]bool
	visited []linkable
	errs    []error
}

func newLinker() *linker {
	return &linker{seen: make(map[linkable]bool)}
}

func (l *linker) link(x any) {
	n, ok := x.(linkable)
	if !ok || l.seen[n] || n.isLinked() {
		return
	}
	l.seen[n] = true
	l.visited = append(l.visited, n)
	n.link(l)
}

func (l *linker) errorf(format string, args ...any) {
	l.errs = append(l.errs, fmt.Errorf("descriptor: "+format, args...))
}

func (l *linker) resolve(owner, what string, ref TypeRef) DataDescriptor {
	if ref == nil {
		l.errorf("%s: missing %s type", owner, what)
		return nil
	}
	d := ref()
	if d == nil {
		l.errorf("%s: unresolved %s type", owner, what)
		return nil
	}
	l.link(d)
	return d
}

func (l *linker) resolveExc(owner string, ref func() *MessageDescriptor) *MessageDescriptor {
	exc := ref()
	if exc == nil {
		l.errorf("%s: unresolved exception", owner)
		return nil
	}
	l.link(exc)
	if exc.newFn != nil && !exc.IsException() {
		l.errorf("%s: exception %s does not implement error", owner, exc.name)
	}
	return exc
}

func (l *linker) finish() error {
	if len(l.errs) > 0 {
		return errors.Join(l.errs...)
	}
	for _, n := range l.visited {
		n.markLinked()
	}
	return nil
}
