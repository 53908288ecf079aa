package pdef

import (
	"context"
)

// HandlerFunc executes an invocation chain. It is passed to
// [UnaryInterceptor] functions to invoke the next interceptor or the final
// execution.
type HandlerFunc func(ctx context.Context, inv *Invocation) (res any, err error)

// UnaryInterceptor wraps the execution of a parsed invocation chain.
//
//	func timing(ctx *pdef.Context, inv *pdef.Invocation, handler pdef.HandlerFunc) (any, error) {
//	    start := time.Now()
//	    res, err := handler(ctx, inv)
//	    log.Printf("%s took %v", ctx.EndpointID(), time.Since(start))
//	    return res, err
//	}
//
// Interceptors can short-circuit by returning without calling handler.
// A returned error goes through declared exception matching first, so an
// interceptor may return a declared exception value.
type UnaryInterceptor func(ctx *Context, inv *Invocation, handler HandlerFunc) (res any, err error)

// chainInterceptors combines multiple interceptors into a single one.
// The first interceptor in the slice is the outer-most one.
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx *Context, inv *Invocation, handler HandlerFunc) (any, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			next := chain
			chain = func(ctx context.Context, inv *Invocation) (any, error) {
				pctx, ok := FromContext(ctx)
				if !ok {
					pctx = NewContext(ctx, inv, RestRequest{})
				} else if pctx != ctx {
					// An interceptor wrapped the context; keep its values.
					pctx = &Context{Context: ctx, inv: pctx.inv, request: pctx.request}
				}
				return current(pctx, inv, next)
			}
		}
		return chain(ctx, inv)
	}
}
