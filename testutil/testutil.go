// Package testutil provides helpers for testing pdef HTTP handlers.
// It depends only on the standard library so any package can import it
// from its tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// RequestBuilder helps construct test HTTP requests with fluent API.
type RequestBuilder struct {
	method  string
	path    string
	headers map[string]string
	query   url.Values
	form    url.Values
}

// NewRequest creates a new GET request builder for "/".
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method:  http.MethodGet,
		path:    "/",
		headers: make(map[string]string),
		query:   make(url.Values),
		form:    make(url.Values),
	}
}

// GET sets the HTTP method to GET.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	b.method = http.MethodGet
	b.path = path
	return b
}

// POST sets the HTTP method to POST.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	b.method = http.MethodPost
	b.path = path
	return b
}

// Method sets an arbitrary HTTP method.
func (b *RequestBuilder) Method(method, path string) *RequestBuilder {
	b.method = method
	b.path = path
	return b
}

// WithHeader adds a header to the request.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// WithQuery adds a query parameter.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.query.Set(key, value)
	return b
}

// WithForm adds a form-encoded body parameter.
func (b *RequestBuilder) WithForm(key, value string) *RequestBuilder {
	b.form.Set(key, value)
	return b
}

// Build creates the HTTP request and ResponseRecorder.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	target := b.path
	if len(b.query) > 0 {
		target += "?" + b.query.Encode()
	}

	var req *http.Request
	if len(b.form) > 0 {
		req = httptest.NewRequest(b.method, target, strings.NewReader(b.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(b.method, target, nil)
	}

	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	return req, httptest.NewRecorder()
}

// Serve builds the request and serves it with h.
func (b *RequestBuilder) Serve(h http.Handler) *httptest.ResponseRecorder {
	req, w := b.Build()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if w.Code != expectedStatus {
		t.Errorf("expected status %d, got %d\nBody: %s", expectedStatus, w.Code, w.Body.String())
	}
}

// Envelope is the decoded form of a successful RPC response.
type Envelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// AssertEnvelope checks for a 200 JSON envelope with the expected status
// and a result equal to expectedResult after JSON normalization.
func AssertEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedStatus string, expectedResult any) {
	t.Helper()

	AssertStatus(t, w, http.StatusOK)
	contentType := w.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("expected Content-Type to contain application/json, got %s", contentType)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v\nBody: %s", err, w.Body.String())
	}
	if env.Status != expectedStatus {
		t.Errorf("expected envelope status %s, got %s", expectedStatus, env.Status)
	}

	expectedJSON, _ := json.Marshal(expectedResult)
	var expectedData, actualData any
	json.Unmarshal(expectedJSON, &expectedData)
	json.Unmarshal(env.Result, &actualData)

	expectedStr, _ := json.MarshalIndent(expectedData, "", "  ")
	actualStr, _ := json.MarshalIndent(actualData, "", "  ")
	if string(expectedStr) != string(actualStr) {
		t.Errorf("result mismatch:\nExpected:\n%s\nActual:\n%s", expectedStr, actualStr)
	}
}

// AssertTextError checks for a plain-text error response.
func AssertTextError(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody string) {
	t.Helper()
	AssertStatus(t, w, expectedStatus)
	if contentType := w.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/plain") {
		t.Errorf("expected text/plain Content-Type, got %s", contentType)
	}
	if got := w.Body.String(); got != expectedBody {
		t.Errorf("expected body %q, got %q", expectedBody, got)
	}
}

// AssertHeader checks that a response header has the expected value.
func AssertHeader(t *testing.T, w *httptest.ResponseRecorder, key, expectedValue string) {
	t.Helper()
	actual := w.Header().Get(key)
	if actual != expectedValue {
		t.Errorf("expected header %s=%s, got %s", key, expectedValue, actual)
	}
}
