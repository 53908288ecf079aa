package pdef

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pdef/pdef-go/descriptor"
	"github.com/pdef/pdef-go/internal/testfixtures"
)

func TestBuildRequest(t *testing.T) {
	schema := testfixtures.New()
	ti := schema.TestInterface

	tests := []struct {
		name      string
		inv       func(t *testing.T) *Invocation
		wantPath  string
		wantPost  bool
		wantQuery map[string]string
		wantForm  map[string]string
	}{
		{
			name:      "chained interfaces",
			inv:       func(t *testing.T) *Invocation { return rootChain(t, schema) },
			wantPath:  "/interface0/true/-32/hello/get",
			wantQuery: map[string]string{"int0": "0", "string0": "world"},
			wantForm:  map[string]string{},
		},
		{
			name: "index method",
			inv: func(t *testing.T) *Invocation {
				return call(t, Root(), ti, "testIndex", int32(1), int32(2))
			},
			wantPath:  "/",
			wantQuery: map[string]string{"arg0": "1", "arg1": "2"},
			wantForm:  map[string]string{},
		},
		{
			name: "chained index",
			inv: func(t *testing.T) *Invocation {
				inv := call(t, Root(), ti, "testInterface", int32(1), int32(2))
				return call(t, inv, ti, "testIndex", int32(3), int32(4))
			},
			wantPath:  "/testInterface/1/2/",
			wantQuery: map[string]string{"arg0": "3", "arg1": "4"},
			wantForm:  map[string]string{},
		},
		{
			name: "post method",
			inv: func(t *testing.T) *Invocation {
				return call(t, Root(), ti, "testPost", int32(3), int32(4))
			},
			wantPath:  "/testPost",
			wantPost:  true,
			wantQuery: map[string]string{},
			wantForm:  map[string]string{"arg0": "3", "arg1": "4"},
		},
		{
			name: "nil query arg is omitted",
			inv: func(t *testing.T) *Invocation {
				return call(t, Root(), ti, "testIndex", int32(1), nil)
			},
			wantPath:  "/",
			wantQuery: map[string]string{"arg0": "1"},
			wantForm:  map[string]string{},
		},
		{
			name: "empty string is sent",
			inv: func(t *testing.T) *Invocation {
				return call(t, Root(), ti, "testString", "")
			},
			wantPath:  "/testString",
			wantQuery: map[string]string{"text": ""},
			wantForm:  map[string]string{},
		},
		{
			name: "escaped positional args",
			inv: func(t *testing.T) *Invocation {
				inv := call(t, Root(), schema.RootInterface, "interface0", false, int32(1), "a/b c")
				return call(t, inv, schema.SubInterface, "get", int32(2), "x")
			},
			wantPath:  "/interface0/false/1/a%2Fb%20c/get",
			wantQuery: map[string]string{"int0": "2", "string0": "x"},
			wantForm:  map[string]string{},
		},
		{
			name: "nil positional arg is an empty segment",
			inv: func(t *testing.T) *Invocation {
				inv := call(t, Root(), schema.RootInterface, "interface0", nil, int32(1), nil)
				return call(t, inv, schema.SubInterface, "get", nil, nil)
			},
			wantPath:  "/interface0//1//get",
			wantQuery: map[string]string{},
			wantForm:  map[string]string{},
		},
		{
			name: "form expands fields",
			inv: func(t *testing.T) *Invocation {
				form := &testfixtures.TestForm{FormString: "hi", FormList: []int32{1, 2}, FormBool: true}
				return call(t, Root(), ti, "testForm", form)
			},
			wantPath:  "/testForm",
			wantQuery: map[string]string{"formString": "hi", "formList": "[1,2]", "formBool": "true"},
			wantForm:  map[string]string{},
		},
		{
			name: "enum and datetime",
			inv: func(t *testing.T) *Invocation {
				return call(t, Root(), ti, "testDatetime", time.Date(2013, 11, 17, 19, 12, 0, 0, time.UTC))
			},
			wantPath:  "/testDatetime",
			wantQuery: map[string]string{"datetime0": "2013-11-17T19:12:00Z"},
			wantForm:  map[string]string{},
		},
		{
			name: "collections as literals",
			inv: func(t *testing.T) *Invocation {
				return call(t, Root(), ti, "testCollections",
					[]int32{2, 1}, map[int32]struct{}{3: {}, 1: {}}, map[int32]string{2: "b", 1: "a"})
			},
			wantPath:  "/testCollections",
			wantQuery: map[string]string{"list0": "[2,1]", "set0": "[1,3]", "map0": `{"1":"a","2":"b"}`},
			wantForm:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildRequest(tt.inv(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Path != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, req.Path)
			}
			if req.IsPost() != tt.wantPost {
				t.Errorf("expected post=%v, got method %s", tt.wantPost, req.Method)
			}
			if !reflect.DeepEqual(req.Query, tt.wantQuery) {
				t.Errorf("expected query %v, got %v", tt.wantQuery, req.Query)
			}
			if !reflect.DeepEqual(req.Post, tt.wantForm) {
				t.Errorf("expected post %v, got %v", tt.wantForm, req.Post)
			}
		})
	}
}

// TestBuildRequest_ParseRoundTrip checks that parsing a built request
// yields the original chain.
func TestBuildRequest_ParseRoundTrip(t *testing.T) {
	schema := testfixtures.New()
	ti := schema.TestInterface

	invs := []*Invocation{
		rootChain(t, schema),
		call(t, Root(), ti, "testIndex", int32(5), int32(6)),
		call(t, call(t, Root(), ti, "testInterface", int32(-1), int32(0)), ti, "testString", "a&b=c"),
		call(t, Root(), ti, "testPost", int32(3), int32(4)),
		call(t, Root(), ti, "testEnum", testfixtures.TestEnumTwo),
		call(t, Root(), ti, "testForm", &testfixtures.TestForm{FormString: "x y", FormList: []int32{7}}),
	}

	for _, inv := range invs {
		t.Run(inv.String(), func(t *testing.T) {
			req, err := BuildRequest(inv)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			iface := inv.Chain()[0].Method().Interface()
			parsed, err := ParseRequest(iface, req)
			if err != nil {
				t.Fatalf("parse %+v: %v", req, err)
			}
			if parsed.String() != inv.String() {
				t.Errorf("expected %s, got %s", inv, parsed)
			}
		})
	}

	t.Run("post chained method", func(t *testing.T) {
		sub := descriptor.NewInterface("Sub").WithMethods(
			descriptor.NewMethod("get", descriptor.Ref(descriptor.String), nil).
				WithArgs(descriptor.Arg("q", descriptor.Of(descriptor.String))),
		)
		root := descriptor.NewInterface("Root").WithMethods(
			descriptor.NewMethod("open", descriptor.Ref(sub), nil).
				WithArgs(descriptor.Arg("id", descriptor.Of(descriptor.Int32))).
				AsPost(),
		)
		if err := descriptor.NewRegistry().Add(root, sub).Link(); err != nil {
			t.Fatalf("link: %v", err)
		}

		inv := call(t, call(t, Root(), root, "open", int32(7)), sub, "get", "x")
		req, err := BuildRequest(inv)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if req.Method != http.MethodPost || req.Path != "/open/get" {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Post["id"] != "7" || req.Query["q"] != "x" {
			t.Errorf("unexpected params post=%v query=%v", req.Post, req.Query)
		}

		parsed, err := ParseRequest(root, req)
		if err != nil {
			t.Fatalf("parse %+v: %v", req, err)
		}
		if parsed.String() != inv.String() {
			t.Errorf("expected %s, got %s", inv, parsed)
		}
	})
}

// loopback returns a client that sends requests straight to srv.
func loopback(srv *Server) *Client {
	return NewClient(SenderFunc(func(ctx context.Context, req RestRequest) (RestResponse, error) {
		return srv.Handle(ctx, req), nil
	}))
}

func TestClient_Invoke(t *testing.T) {
	schema, _, srv := newTestServer()
	ti := schema.TestInterface
	client := loopback(srv)
	ctx := context.Background()

	t.Run("remote", func(t *testing.T) {
		got, err := Call[string](ctx, client, call(t, Root(), ti, "testRemote"))
		if err != nil || got != "remote" {
			t.Errorf("expected remote, got %q %v", got, err)
		}
	})

	t.Run("post", func(t *testing.T) {
		got, err := Call[int32](ctx, client, call(t, Root(), ti, "testPost", int32(3), int32(4)))
		if err != nil || got != 12 {
			t.Errorf("expected 12, got %d %v", got, err)
		}
	})

	t.Run("message", func(t *testing.T) {
		msg := &testfixtures.TestMessage{String0: "hi", Int0: 5, List0: []int32{1, 2}, Enum0: testfixtures.TestEnumThree}
		got, err := Call[*testfixtures.TestMessage](ctx, client, call(t, Root(), ti, "testMessage", msg))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, msg) {
			t.Errorf("expected %+v, got %+v", msg, got)
		}
	})

	t.Run("polymorphic", func(t *testing.T) {
		msg := &testfixtures.MultiLevelSubtype{
			Subtype: testfixtures.Subtype{
				Base:     testfixtures.Base{Type: testfixtures.PolymorphicMultiLevelSubtype, Field: "f"},
				Subfield: "s",
			},
			Mfield: "m",
		}
		got, err := Call[testfixtures.BaseMessage](ctx, client, call(t, Root(), ti, "testPolymorphic", msg))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, msg) {
			t.Errorf("expected %+v, got %+v", msg, got)
		}
	})

	t.Run("void", func(t *testing.T) {
		res, err := client.Invoke(ctx, call(t, Root(), ti, "testVoid"))
		if err != nil || res != nil {
			t.Errorf("expected nil, nil; got %v, %v", res, err)
		}
	})

	t.Run("exception", func(t *testing.T) {
		_, err := Call[string](ctx, client, call(t, Root(), ti, "testExc", "boom"))
		var exc *testfixtures.TestException
		if !errors.As(err, &exc) {
			t.Fatalf("expected TestException, got %v", err)
		}
		if exc.Text != "boom" {
			t.Errorf("expected boom, got %s", exc.Text)
		}
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.Invoke(ctx, call(t, Root(), ti, "testError"))
		var protoErr *Error
		if !errors.As(err, &protoErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if protoErr.Code != CodeServerError || protoErr.Message != "Internal server error" {
			t.Errorf("unexpected error %v", protoErr)
		}
	})

	t.Run("not remote", func(t *testing.T) {
		_, err := client.Invoke(ctx, call(t, Root(), ti, "testInterface", int32(1), int32(2)))
		if !errors.Is(err, ErrNotRemote) {
			t.Errorf("expected ErrNotRemote, got %v", err)
		}
	})
}

func TestClient_ChainedRoot(t *testing.T) {
	schema := testfixtures.New()
	client := loopback(NewServer(schema.RootInterface, Singleton(testfixtures.Root{})))

	got, err := Call[string](context.Background(), client, rootChain(t, schema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "true -32 hello 0 world" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestClient_Responses(t *testing.T) {
	schema := testfixtures.New()
	inv := call(t, Root(), schema.TestInterface, "testRemote")
	sendErr := errors.New("connection refused")

	tests := []struct {
		name     string
		resp     RestResponse
		err      error
		wantCode ErrorCode
		wantMsg  string
		wantErr  error
	}{
		{
			name:     "not found",
			resp:     RestResponse{Status: http.StatusNotFound, Body: "Method not found"},
			wantCode: CodeMethodNotFound,
			wantMsg:  "Method not found",
		},
		{
			name:     "bad request",
			resp:     RestResponse{Status: http.StatusBadRequest, Body: "Wrong method argument text"},
			wantCode: CodeClientError,
			wantMsg:  "Wrong method argument text",
		},
		{
			name:     "unavailable",
			resp:     RestResponse{Status: http.StatusServiceUnavailable, Body: "Service unavailable"},
			wantCode: CodeServiceUnavailable,
			wantMsg:  "Service unavailable",
		},
		{
			name:    "send failure",
			err:     sendErr,
			wantErr: sendErr,
		},
		{
			name:    "malformed envelope",
			resp:    RestResponse{Status: http.StatusOK, Body: `{"status":"MAYBE"}`},
			wantErr: errMalformedEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(SenderFunc(func(ctx context.Context, req RestRequest) (RestResponse, error) {
				return tt.resp, tt.err
			}))
			_, err := client.Invoke(context.Background(), inv)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			var protoErr *Error
			if !errors.As(err, &protoErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if protoErr.Code != tt.wantCode || protoErr.Message != tt.wantMsg {
				t.Errorf("expected %s %q, got %s %q", tt.wantCode, tt.wantMsg, protoErr.Code, protoErr.Message)
			}
		})
	}
}

func TestHTTPSender(t *testing.T) {
	schema, svc, srv := newTestServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := NewClient(NewHTTPSender(ts.URL+"/", ts.Client()))
	ctx := context.Background()
	ti := schema.TestInterface

	sum, err := Call[int32](ctx, client, call(t, call(t, Root(), ti, "testInterface", int32(1), int32(2)), ti, "testIndex", int32(3), int32(4)))
	if err != nil || sum != 7 {
		t.Errorf("expected 7, got %d %v", sum, err)
	}

	product, err := Call[int32](ctx, client, call(t, Root(), ti, "testPost", int32(3), int32(4)))
	if err != nil || product != 12 {
		t.Errorf("expected 12, got %d %v", product, err)
	}

	text, err := Call[string](ctx, client, call(t, Root(), ti, "testString", "a&b=c/d"))
	if err != nil || text != "a&b=c/d" {
		t.Errorf("expected a&b=c/d, got %q %v", text, err)
	}

	want := time.Date(2013, 11, 17, 19, 12, 0, 0, time.UTC)
	dt, err := Call[time.Time](ctx, client, call(t, Root(), ti, "testDatetime", want))
	if err != nil || !dt.Equal(want) {
		t.Errorf("expected %v, got %v %v", want, dt, err)
	}

	calls := svc.Calls()
	if len(calls) != 5 {
		t.Errorf("expected 5 service calls, got %v", calls)
	}
}
