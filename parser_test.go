package pdef

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/pdef/pdef-go/internal/testfixtures"
)

func TestParseRequest_ChainedInterfaces(t *testing.T) {
	schema := testfixtures.New()
	req := get("/interface0/true/-32/hello/get", "int0", "0", "string0", "world")

	inv, err := ParseRequest(schema.RootInterface, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chain := inv.Chain()
	if len(chain) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chain))
	}
	if got := chain[0].Args(); !reflect.DeepEqual(got, []any{true, int32(-32), "hello"}) {
		t.Errorf("unexpected interface0 args %#v", got)
	}
	if got := chain[1].Args(); !reflect.DeepEqual(got, []any{int32(0), "world"}) {
		t.Errorf("unexpected get args %#v", got)
	}
	if inv.String() != rootChain(t, schema).String() {
		t.Errorf("expected %s, got %s", rootChain(t, schema), inv)
	}
}

func TestParseRequest_Args(t *testing.T) {
	schema := testfixtures.New()

	tests := []struct {
		name     string
		req      RestRequest
		wantPath []string
		wantArgs []any
	}{
		{
			name:     "index method",
			req:      get("/", "arg0", "1", "arg1", "2"),
			wantPath: []string{"testIndex"},
			wantArgs: []any{int32(1), int32(2)},
		},
		{
			name:     "empty path selects index",
			req:      get("", "arg0", "1"),
			wantPath: []string{"testIndex"},
			wantArgs: []any{int32(1), nil},
		},
		{
			name:     "chained index",
			req:      get("/testInterface/1/2/", "arg0", "3", "arg1", "4"),
			wantPath: []string{"testInterface", "testIndex"},
			wantArgs: []any{int32(3), int32(4)},
		},
		{
			name:     "remote method without args",
			req:      get("/testRemote"),
			wantPath: []string{"testRemote"},
			wantArgs: []any{},
		},
		{
			name:     "post method",
			req:      post("/testPost", "arg0", "3", "arg1", "4"),
			wantPath: []string{"testPost"},
			wantArgs: []any{int32(3), int32(4)},
		},
		{
			name:     "post method ignores query",
			req:      func() RestRequest { r := post("/testPost", "arg0", "3"); r.Query["arg1"] = "4"; return r }(),
			wantPath: []string{"testPost"},
			wantArgs: []any{int32(3), nil},
		},
		{
			name:     "remote method on post request reads query",
			req:      func() RestRequest { r := post("/testString", "text", "form"); r.Query["text"] = "query"; return r }(),
			wantPath: []string{"testString"},
			wantArgs: []any{"query"},
		},
		{
			name:     "missing query arg is nil",
			req:      get("/testString"),
			wantPath: []string{"testString"},
			wantArgs: []any{nil},
		},
		{
			name:     "empty string is kept",
			req:      get("/testString", "text", ""),
			wantPath: []string{"testString"},
			wantArgs: []any{""},
		},
		{
			name:     "empty enum is nil",
			req:      get("/testEnum", "enum0", ""),
			wantPath: []string{"testEnum"},
			wantArgs: []any{nil},
		},
		{
			name:     "enum ignores case",
			req:      get("/testEnum", "enum0", "TWO"),
			wantPath: []string{"testEnum"},
			wantArgs: []any{testfixtures.TestEnumTwo},
		},
		{
			name:     "datetime",
			req:      get("/testDatetime", "datetime0", "2013-11-17T19:12:00Z"),
			wantPath: []string{"testDatetime"},
			wantArgs: []any{time.Date(2013, 11, 17, 19, 12, 0, 0, time.UTC)},
		},
		{
			name:     "collections as literals",
			req:      get("/testCollections", "list0", "[1,2]", "set0", "[3]", "map0", `{"4":"four"}`),
			wantPath: []string{"testCollections"},
			wantArgs: []any{[]int32{1, 2}, map[int32]struct{}{3: {}}, map[int32]string{4: "four"}},
		},
		{
			name:     "message as literal",
			req:      get("/testMessage", "msg", `{"string0":"hi","int0":5}`),
			wantPath: []string{"testMessage"},
			wantArgs: []any{&testfixtures.TestMessage{String0: "hi", Int0: 5}},
		},
		{
			name:     "polymorphic literal",
			req:      get("/testPolymorphic", "msg", `{"type":"subtype","subfield":"x"}`),
			wantPath: []string{"testPolymorphic"},
			wantArgs: []any{&testfixtures.Subtype{Base: testfixtures.Base{Type: testfixtures.PolymorphicSubtype}, Subfield: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := ParseRequest(schema.TestInterface, tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var path []string
			for _, c := range inv.Chain() {
				path = append(path, c.Method().Name())
			}
			if !reflect.DeepEqual(path, tt.wantPath) {
				t.Errorf("expected chain %v, got %v", tt.wantPath, path)
			}
			if got := inv.Args(); !reflect.DeepEqual(got, tt.wantArgs) {
				t.Errorf("expected args %#v, got %#v", tt.wantArgs, got)
			}
		})
	}
}

func TestParseRequest_PositionalArgs(t *testing.T) {
	schema := testfixtures.New()

	tests := []struct {
		name string
		path string
		want []any
	}{
		{"plain", "/interface0/true/1/a/get", []any{true, int32(1), "a"}},
		{"bool ignores case", "/interface0/TruE/1/a/get", []any{true, int32(1), "a"}},
		{"bool digit", "/interface0/0/1/a/get", []any{false, int32(1), "a"}},
		{"escaped slash", "/interface0/true/1/a%2Fb/get", []any{true, int32(1), "a/b"}},
		{"escaped space", "/interface0/true/1/a%20b/get", []any{true, int32(1), "a b"}},
		{"empty segments", "/interface0//-1//get", []any{nil, int32(-1), ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := ParseRequest(schema.RootInterface, get(tt.path))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := inv.Chain()[0].Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
			if got := inv.Args(); !reflect.DeepEqual(got, []any{nil, nil}) {
				t.Errorf("expected absent get args, got %#v", got)
			}
		})
	}
}

func TestParseRequest_Form(t *testing.T) {
	schema := testfixtures.New()

	tests := []struct {
		name string
		req  RestRequest
		want *testfixtures.TestForm
	}{
		{
			name: "all fields",
			req:  get("/testForm", "formString", "hello", "formList", "[1,2]", "formBool", "1"),
			want: &testfixtures.TestForm{FormString: "hello", FormList: []int32{1, 2}, FormBool: true},
		},
		{
			name: "missing fields",
			req:  get("/testForm", "formBool", "false"),
			want: &testfixtures.TestForm{},
		},
		{
			name: "empty values",
			req:  get("/testForm", "formString", "", "formList", "", "formBool", ""),
			want: &testfixtures.TestForm{},
		},
		{
			name: "unrelated keys ignored",
			req:  get("/testForm", "form", "x", "formString", "y"),
			want: &testfixtures.TestForm{FormString: "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := ParseRequest(schema.TestInterface, tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := inv.Args()[0].(*testfixtures.TestForm)
			if !ok {
				t.Fatalf("expected *TestForm, got %T", inv.Args()[0])
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseRequest_Errors(t *testing.T) {
	schema := testfixtures.New()

	tests := []struct {
		name       string
		req        RestRequest
		wantCode   ErrorCode
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "post method over get",
			req:        get("/testPost", "arg0", "1", "arg1", "2"),
			wantCode:   CodeMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantMsg:    "Method not allowed, POST required",
		},
		{
			name:       "unknown segment after index",
			req:        get("/unknown"),
			wantCode:   CodeMethodNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Method not found",
		},
		{
			name:       "segment after remote method",
			req:        get("/testRemote/extra"),
			wantCode:   CodeMethodNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Method not found",
		},
		{
			name:       "out of positional segments",
			req:        get("/testInterface/1"),
			wantCode:   CodeWrongMethodArgs,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Wrong number of method args",
		},
		{
			name:       "chain ends with interface",
			req:        get("/testInterface/1/2"),
			wantCode:   CodeMethodNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "The last method must be a remote one. It must return a data type.",
		},
		{
			name:       "malformed positional arg",
			req:        get("/testInterface/x/2/"),
			wantCode:   CodeWrongMethodArgs,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Wrong method argument a",
		},
		{
			name:       "malformed query arg",
			req:        get("/testEnum", "enum0", "four"),
			wantCode:   CodeWrongMethodArgs,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Wrong method argument enum0",
		},
		{
			name:       "malformed form field",
			req:        get("/testForm", "formList", "[1,"),
			wantCode:   CodeWrongMethodArgs,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Wrong method argument form",
		},
		{
			name:       "int out of range",
			req:        get("/", "arg0", "4294967296"),
			wantCode:   CodeWrongMethodArgs,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Wrong method argument arg0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(schema.TestInterface, tt.req)
			var protoErr *Error
			if !errors.As(err, &protoErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if protoErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, protoErr.Code)
			}
			if protoErr.Code.HTTPStatus() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, protoErr.Code.HTTPStatus())
			}
			if protoErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, protoErr.Message)
			}
		})
	}
}

func TestParseRequest_NoIndexMethod(t *testing.T) {
	schema := testfixtures.New()

	_, err := ParseRequest(schema.RootInterface, get("/"))
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Code != CodeMethodNotFound {
		t.Errorf("expected method not found, got %v", err)
	}
}
