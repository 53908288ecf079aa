package descriptor

import (
	"context"
	"fmt"
)

// Helpers for generated InvokeFunc bodies.

// As returns v as a T, or the zero T when v is nil or of another type.
// Absent arguments arrive as nil.
func As[T any](v any) T {
	t, _ := v.(T)
	return t
}

// Target asserts that a service object implements T.
func Target[T any](target any) (T, error) {
	t, ok := target.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("descriptor: service %T does not implement %T", target, (*T)(nil))
	}
	return t, nil
}

// Bind adapts a call on a service of type S to an InvokeFunc.
func Bind[S any](call func(ctx context.Context, svc S, args []any) (any, error)) InvokeFunc {
	return func(ctx context.Context, target any, args []any) (any, error) {
		svc, err := Target[S](target)
		if err != nil {
			return nil, err
		}
		return call(ctx, svc, args)
	}
}
