package pdef

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct {
	name string
}

var (
	pdefKey    = &contextKey{"pdef"}
	requestKey = &contextKey{"request"}
	writerKey  = &contextKey{"writer"}
)

// Context carries the parsed invocation of the current call. Interceptors
// receive it directly; service code can recover it with FromContext.
type Context struct {
	context.Context
	inv     *Invocation
	request RestRequest
}

// NewContext returns a Context for inv. It is used by the server and by
// tests of interceptors.
func NewContext(parent context.Context, inv *Invocation, req RestRequest) *Context {
	return &Context{Context: parent, inv: inv, request: req}
}

// Value returns the Context itself for the package key.
func (c *Context) Value(key any) any {
	if key == pdefKey {
		return c
	}
	return c.Context.Value(key)
}

// Invocation returns the leaf invocation of the call chain.
func (c *Context) Invocation() *Invocation { return c.inv }

// Request returns the REST request the invocation was parsed from.
func (c *Context) Request() RestRequest { return c.request }

// EndpointID identifies the call chain as Interface.method.method.
func (c *Context) EndpointID() string {
	if c.inv == nil || c.inv.IsRoot() {
		return ""
	}
	chain := c.inv.Chain()
	parts := make([]string, 0, len(chain)+1)
	if iface := chain[0].Method().Interface(); iface != nil {
		parts = append(parts, iface.Name())
	}
	for _, call := range chain {
		parts = append(parts, call.Method().Name())
	}
	return strings.Join(parts, ".")
}

// FromContext returns the *Context stored in ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	if c, ok := ctx.(*Context); ok {
		return c, true
	}
	c, ok := ctx.Value(pdefKey).(*Context)
	return c, ok
}

// RequestFromContext returns the HTTP request when the call arrived
// through Server.Handler.
func RequestFromContext(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(requestKey).(*http.Request); ok {
		return r
	}
	return nil
}

// SetHeader sets an HTTP response header. It has no effect unless the call
// arrived through Server.Handler.
func SetHeader(ctx context.Context, key, value string) {
	if w, ok := ctx.Value(writerKey).(http.ResponseWriter); ok {
		w.Header().Set(key, value)
	}
}

func withHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, writerKey, w)
	ctx = context.WithValue(ctx, requestKey, r)
	return ctx
}
