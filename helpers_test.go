package pdef

import (
	"testing"

	"github.com/pdef/pdef-go/descriptor"
	"github.com/pdef/pdef-go/internal/testfixtures"
)

// get builds a GET request with alternating query keys and values.
func get(path string, query ...string) RestRequest {
	req := NewRestRequest(path)
	for i := 0; i+1 < len(query); i += 2 {
		req.Query[query[i]] = query[i+1]
	}
	return req
}

// post builds a POST request with alternating form keys and values.
func post(path string, form ...string) RestRequest {
	req := NewRestRequest(path)
	req.Method = "POST"
	for i := 0; i+1 < len(form); i += 2 {
		req.Post[form[i]] = form[i+1]
	}
	return req
}

func newTestServer() (*testfixtures.Schema, *testfixtures.Service, *Server) {
	schema := testfixtures.New()
	svc := &testfixtures.Service{}
	return schema, svc, NewServer(schema.TestInterface, Singleton(svc))
}

func method(t *testing.T, iface *descriptor.InterfaceDescriptor, name string) *descriptor.MethodDescriptor {
	t.Helper()
	m := iface.FindMethod(name)
	if m == nil {
		t.Fatalf("%s has no method %s", iface.Name(), name)
	}
	return m
}

// call appends a call of the named method of iface to inv.
func call(t *testing.T, inv *Invocation, iface *descriptor.InterfaceDescriptor, name string, args ...any) *Invocation {
	t.Helper()
	next, err := inv.Next(method(t, iface, name), args...)
	if err != nil {
		t.Fatalf("Next(%s): %v", name, err)
	}
	return next
}

// rootChain is RootInterface.interface0(true, -32, "hello").get(0, "world").
func rootChain(t *testing.T, schema *testfixtures.Schema) *Invocation {
	t.Helper()
	inv := call(t, Root(), schema.RootInterface, "interface0", true, int32(-32), "hello")
	return call(t, inv, schema.SubInterface, "get", int32(0), "world")
}
