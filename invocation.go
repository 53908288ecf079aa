package pdef

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdef/pdef-go/descriptor"
)

var (
	// ErrWrongArgCount is returned when an invocation is built with a number
	// of arguments different from the method declaration.
	ErrWrongArgCount = errors.New("pdef: wrong number of arguments")

	// ErrChainTerminated is returned when a call is appended after a remote method.
	ErrChainTerminated = errors.New("pdef: chain already ends with a remote method")

	// ErrRootInvocation is returned when the root invocation is executed.
	ErrRootInvocation = errors.New("pdef: cannot execute the root invocation")
)

// Invocation is an immutable method call record. Invocations form a singly
// linked chain through their parents; the root has no method.
type Invocation struct {
	method *descriptor.MethodDescriptor
	args   []any
	parent *Invocation
}

// Root returns a new root invocation.
func Root() *Invocation {
	return &Invocation{}
}

// Next returns a child invocation of method with the given native arguments.
func (inv *Invocation) Next(method *descriptor.MethodDescriptor, args ...any) (*Invocation, error) {
	if method == nil {
		return nil, errors.New("pdef: nil method")
	}
	if inv.IsRemote() {
		return nil, fmt.Errorf("%w: %s", ErrChainTerminated, inv.method)
	}
	if len(args) != len(method.Args()) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrWrongArgCount, method, len(method.Args()), len(args))
	}

	copied := make([]any, len(args))
	copy(copied, args)
	return &Invocation{method: method, args: copied, parent: inv}, nil
}

// Method returns the invoked method, or nil for the root.
func (inv *Invocation) Method() *descriptor.MethodDescriptor { return inv.method }

// Args returns a copy of the native arguments.
func (inv *Invocation) Args() []any {
	out := make([]any, len(inv.args))
	copy(out, inv.args)
	return out
}

// Parent returns the previous invocation, or nil for the root.
func (inv *Invocation) Parent() *Invocation { return inv.parent }

// IsRoot reports whether inv is a chain root.
func (inv *Invocation) IsRoot() bool { return inv.method == nil }

// IsRemote reports whether inv terminates a chain.
func (inv *Invocation) IsRemote() bool {
	return inv.method != nil && inv.method.IsRemote()
}

// Result returns the result descriptor of the invoked method.
func (inv *Invocation) Result() descriptor.Descriptor {
	if inv.method == nil {
		return nil
	}
	return inv.method.Result()
}

// Exc returns the exception declared by this call, or the nearest one
// declared up the chain.
func (inv *Invocation) Exc() *descriptor.MessageDescriptor {
	for i := inv; i != nil; i = i.parent {
		if i.method == nil {
			continue
		}
		if exc := i.method.Exc(); exc != nil {
			return exc
		}
	}
	return nil
}

// Chain returns the calls from the first after the root to inv.
func (inv *Invocation) Chain() []*Invocation {
	var n int
	for i := inv; i != nil && !i.IsRoot(); i = i.parent {
		n++
	}
	chain := make([]*Invocation, n)
	for i := inv; i != nil && !i.IsRoot(); i = i.parent {
		n--
		chain[n] = i
	}
	return chain
}

// Execute folds the chain over service: the first call is invoked on
// service and every following call on the previous result.
func (inv *Invocation) Execute(ctx context.Context, service any) (any, error) {
	if inv.IsRoot() {
		return nil, ErrRootInvocation
	}

	target := service
	for _, call := range inv.Chain() {
		if target == nil {
			return nil, fmt.Errorf("pdef: %s: nil target", call.method)
		}
		res, err := call.ExecuteOne(ctx, target)
		if err != nil {
			return nil, err
		}
		target = res
	}
	return target, nil
}

// ExecuteOne invokes this call alone on target.
func (inv *Invocation) ExecuteOne(ctx context.Context, target any) (any, error) {
	if inv.IsRoot() {
		return nil, ErrRootInvocation
	}
	return inv.method.Invoke(ctx, target, inv.args)
}

// String renders the chain as Interface.method(args).method(args).
func (inv *Invocation) String() string {
	if inv.IsRoot() {
		return "<root>"
	}
	var b strings.Builder
	for i, call := range inv.Chain() {
		if i == 0 && call.method.Interface() != nil {
			b.WriteString(call.method.Interface().Name())
		}
		b.WriteByte('.')
		b.WriteString(call.method.Name())
		b.WriteByte('(')
		for j, arg := range call.args {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%v", arg)
		}
		b.WriteByte(')')
	}
	return b.String()
}
