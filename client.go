package pdef

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdef/pdef-go/descriptor"
	"github.com/pdef/pdef-go/generic"
)

// Sender delivers a REST request and returns the raw response.
type Sender interface {
	Send(ctx context.Context, req RestRequest) (RestResponse, error)
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(ctx context.Context, req RestRequest) (RestResponse, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, req RestRequest) (RestResponse, error) {
	return f(ctx, req)
}

// ErrNotRemote is returned when a chain that does not end with a remote
// method is sent.
var ErrNotRemote = errors.New("pdef: invocation chain must end with a remote method")

// Client sends invocation chains and decodes their results. Generated
// clients build the chain and delegate to Call.
type Client struct {
	sender Sender
	codec  Codec
	logger *slog.Logger
}

// NewClient returns a client that sends requests through sender.
func NewClient(sender Sender) *Client {
	return &Client{sender: sender, codec: JSON}
}

// WithCodec sets the envelope codec. The default is JSON.
func (c *Client) WithCodec(codec Codec) *Client {
	c.codec = codec
	return c
}

// WithLogger sets a custom logger. If not set, slog.Default() is used.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// Invoke sends the chain ending at inv. A declared exception is returned
// as the error, as the native exception value.
func (c *Client) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	if !inv.IsRemote() {
		return nil, ErrNotRemote
	}
	req, err := BuildRequest(inv)
	if err != nil {
		return nil, err
	}
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pdef: send %s: %w", inv.Method(), err)
	}
	return c.parseResponse(inv, resp)
}

func (c *Client) parseResponse(inv *Invocation, resp RestResponse) (any, error) {
	if !resp.IsOK() {
		return nil, &Error{Code: CodeFromHTTPStatus(resp.Status), Message: resp.Body}
	}

	rpc, err := c.codec.Decode([]byte(resp.Body))
	if err != nil {
		c.log().Warn("malformed response",
			slog.String("method", inv.Method().String()),
			slog.String("content_type", resp.ContentType),
			slog.Any("error", err))
		return nil, err
	}

	switch rpc.Status {
	case StatusException:
		exc := inv.Exc()
		if exc == nil {
			return nil, fmt.Errorf("pdef: %s returned an undeclared exception", inv.Method())
		}
		v, err := exc.FromGeneric(rpc.Result)
		if err != nil {
			return nil, err
		}
		excErr, ok := v.(error)
		if !ok || v == nil {
			return nil, fmt.Errorf("pdef: exception %s is not an error", exc.Name())
		}
		return nil, excErr
	default:
		d, ok := inv.Result().(descriptor.DataDescriptor)
		if !ok {
			return nil, ErrNotRemote
		}
		return d.FromGeneric(rpc.Result)
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Call invokes inv through c and asserts the result to T. A nil result
// yields the zero T.
func Call[T any](ctx context.Context, c *Client, inv *Invocation) (T, error) {
	var zero T
	res, err := c.Invoke(ctx, inv)
	if err != nil || res == nil {
		return zero, err
	}
	t, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("pdef: %s returned %T, want %T", inv.Method(), res, zero)
	}
	return t, nil
}

// BuildRequest renders an invocation chain as a REST request. It is the
// inverse of ParseRequest: named methods emit their name as a segment and
// index methods an empty one; intermediate calls append their arguments as
// path segments and the remote call writes its arguments to the query.
// Post methods, remote or not, write their arguments to the post body.
func BuildRequest(inv *Invocation) (RestRequest, error) {
	req := NewRestRequest("")

	var path strings.Builder
	for _, call := range inv.Chain() {
		m := call.Method()
		path.WriteByte('/')
		if !m.IsIndex() {
			path.WriteString(m.Name())
		}

		if !m.IsRemote() && !m.IsPost() {
			for i, arg := range m.Args() {
				text, _, err := formatArg(arg.Type(), call.args[i])
				if err != nil {
					return req, fmt.Errorf("pdef: %s arg %s: %w", m, arg.Name(), err)
				}
				path.WriteByte('/')
				path.WriteString(url.PathEscape(text))
			}
			continue
		}

		dst := req.Query
		if m.IsPost() {
			req.Method = http.MethodPost
			dst = req.Post
		}
		for i, arg := range m.Args() {
			if err := writeParam(dst, arg, call.args[i]); err != nil {
				return req, fmt.Errorf("pdef: %s arg %s: %w", m, arg.Name(), err)
			}
		}
	}

	req.Path = path.String()
	if req.Path == "" {
		req.Path = "/"
	}
	return req, nil
}

func writeParam(dst map[string]string, arg *descriptor.ArgDescriptor, v any) error {
	form, ok := arg.Type().(*descriptor.MessageDescriptor)
	if !ok || !form.IsForm() {
		text, present, err := formatArg(arg.Type(), v)
		if err != nil {
			return err
		}
		if present {
			dst[arg.Name()] = text
		}
		return nil
	}

	g, err := form.ToGeneric(v)
	if err != nil || g == nil {
		return err
	}
	fields := g.(*generic.Fields)
	for _, name := range fields.Names() {
		value, _ := fields.Get(name)
		if s, ok := value.(string); ok {
			dst[name] = s
			continue
		}
		text, err := generic.FormatText(value)
		if err != nil {
			return err
		}
		dst[name] = text
	}
	return nil
}

// formatArg renders a native argument as flat text. present is false for
// values that convert to nil.
func formatArg(d descriptor.DataDescriptor, v any) (text string, present bool, err error) {
	g, err := d.ToGeneric(v)
	if err != nil || g == nil {
		return "", false, err
	}
	text, err = d.FormatText(v)
	return text, err == nil, err
}

// HTTPSender sends REST requests over HTTP to a base URL.
type HTTPSender struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSender returns a sender for baseURL. A nil client uses
// http.DefaultClient.
func NewHTTPSender(baseURL string, client *http.Client) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Send implements Sender. Post parameters are sent form-encoded.
func (s *HTTPSender) Send(ctx context.Context, req RestRequest) (RestResponse, error) {
	u := s.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + values(req.Query).Encode()
	}

	var body io.Reader
	if req.IsPost() {
		body = strings.NewReader(values(req.Post).Encode())
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return RestResponse{}, err
	}
	if req.IsPost() {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return RestResponse{}, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return RestResponse{}, err
	}
	return RestResponse{
		Status:      httpResp.StatusCode,
		Body:        string(data),
		ContentType: httpResp.Header.Get("Content-Type"),
	}, nil
}

func values(m map[string]string) url.Values {
	v := make(url.Values, len(m))
	for key, value := range m {
		v.Set(key, value)
	}
	return v
}
