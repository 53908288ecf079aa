package pdef

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"

	"github.com/go-playground/validator/v10"
	"github.com/pdef/pdef-go/descriptor"
)

// Supplier returns the service object a request is executed against.
// It is called once per request.
type Supplier func(ctx context.Context) (any, error)

// Singleton returns a Supplier that always returns service.
func Singleton(service any) Supplier {
	return func(context.Context) (any, error) { return service, nil }
}

// Server parses REST requests against a root interface, executes them and
// maps results, declared exceptions and errors to REST responses.
// Use Handler() to serve it over HTTP.
type Server struct {
	iface              *descriptor.InterfaceDescriptor
	supplier           Supplier
	codec              Codec
	errorTransformer   ErrorTransformer
	interceptors       []UnaryInterceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	validate           *validator.Validate
	maxRequestBodySize int64
}

// NewServer returns a server for the linked root interface iface.
func NewServer(iface *descriptor.InterfaceDescriptor, supplier Supplier) *Server {
	if iface == nil {
		panic("pdef: nil interface descriptor")
	}
	if supplier == nil {
		panic("pdef: nil service supplier")
	}
	return &Server{
		iface:              iface,
		supplier:           supplier,
		codec:              JSON,
		maxRequestBodySize: 1 << 20, // 1MB default
	}
}

// Interface returns the root interface descriptor.
func (s *Server) Interface() *descriptor.InterfaceDescriptor { return s.iface }

// WithCodec sets the envelope codec. The default is JSON.
func (s *Server) WithCodec(c Codec) *Server {
	s.codec = c
	return s
}

// WithErrorTransformer sets a custom error transformer. Errors it returns
// nil for fall through to DefaultErrorTransformer.
func (s *Server) WithErrorTransformer(fn ErrorTransformer) *Server {
	s.errorTransformer = fn
	return s
}

// WithUnaryInterceptor adds an interceptor. Interceptors run in the order
// they were added, around service execution and after parsing.
func (s *Server) WithUnaryInterceptor(i UnaryInterceptor) *Server {
	s.interceptors = append(s.interceptors, i)
	return s
}

// WithMiddleware adds an HTTP middleware to wrap Handler().
// Middleware is applied in the order added (first added is outermost).
func (s *Server) WithMiddleware(mw func(http.Handler) http.Handler) *Server {
	s.middlewares = append(s.middlewares, mw)
	return s
}

// WithLogger sets a custom logger. If not set, slog.Default() is used.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	s.logger = logger
	return s
}

// WithValidation validates struct arguments with v before execution.
// Validation failures are wrong method args errors. A nil v uses a
// validator with default settings.
func (s *Server) WithValidation(v *validator.Validate) *Server {
	if v == nil {
		v = validator.New()
	}
	s.validate = v
	return s
}

// WithMaxRequestBodySize limits POST bodies read by Handler().
// A value of 0 means no limit. Default is 1MB (1 << 20).
func (s *Server) WithMaxRequestBodySize(size int64) *Server {
	s.maxRequestBodySize = size
	return s
}

func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// ParseRequest parses req against the root interface.
func (s *Server) ParseRequest(req RestRequest) (*Invocation, error) {
	return ParseRequest(s.iface, req)
}

// Handle parses, executes and encodes a single request. It never returns
// an error; failures are encoded in the response.
func (s *Server) Handle(ctx context.Context, req RestRequest) (resp RestResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log().ErrorContext(ctx, "PANIC recovered",
				slog.Any("panic", rec),
				slog.String("path", req.Path),
				slog.String("stack", string(debug.Stack())))
			resp = textResponse(http.StatusInternalServerError, fallbackMessage)
		}
	}()

	inv, err := s.ParseRequest(req)
	if err != nil {
		return s.errorResponse(ctx, err)
	}
	if err := s.validateArgs(inv); err != nil {
		return s.errorResponse(ctx, err)
	}

	pctx := NewContext(ctx, inv, req)
	var result any
	if chain := chainInterceptors(s.interceptors); chain != nil {
		result, err = chain(pctx, inv, s.execute)
	} else {
		result, err = s.execute(pctx, inv)
	}

	if err != nil {
		if exc := inv.Exc(); exc != nil {
			if v := matchException(exc, err); v != nil {
				return s.envelope(ctx, StatusException, exc, v)
			}
		}
		return s.errorResponse(ctx, err)
	}

	d, ok := inv.Result().(descriptor.DataDescriptor)
	if !ok {
		return s.errorResponse(ctx, fmt.Errorf("pdef: %s has no data result", inv.Method()))
	}
	return s.envelope(ctx, StatusOK, d, result)
}

func (s *Server) execute(ctx context.Context, inv *Invocation) (any, error) {
	service, err := s.supplier(ctx)
	if err != nil {
		return nil, err
	}
	return inv.Execute(ctx, service)
}

// matchException returns the first error in err's chain that is an
// instance of exc or of one of its subtypes.
func matchException(exc *descriptor.MessageDescriptor, err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if exc.Matches(e) {
			return e
		}
	}
	return nil
}

func (s *Server) envelope(ctx context.Context, status ResponseStatus, d descriptor.DataDescriptor, v any) RestResponse {
	g, err := d.ToGeneric(v)
	if err != nil {
		s.log().ErrorContext(ctx, "failed to convert result",
			slog.String("type", d.Name()),
			slog.Any("error", err))
		return textResponse(http.StatusInternalServerError, fallbackMessage)
	}

	body, err := s.codec.Encode(&RpcResponse{Status: status, Result: g})
	if err != nil {
		s.log().ErrorContext(ctx, "failed to encode response",
			slog.String("status", string(status)),
			slog.Any("error", err))
		return textResponse(http.StatusInternalServerError, fallbackMessage)
	}
	return RestResponse{
		Status:      http.StatusOK,
		Body:        string(body),
		ContentType: s.codec.ContentType(),
	}
}

func (s *Server) errorResponse(ctx context.Context, err error) RestResponse {
	var protoErr *Error
	if s.errorTransformer != nil {
		protoErr = s.errorTransformer(err)
	}
	if protoErr == nil {
		protoErr = DefaultErrorTransformer(err)
	}

	message := protoErr.Message
	if protoErr.Code == CodeServerError {
		s.log().ErrorContext(ctx, "request failed",
			slog.String("code", string(protoErr.Code)),
			slog.Any("error", err))
		if message == "" {
			message = fallbackMessage
		}
	}
	return textResponse(protoErr.Code.HTTPStatus(), message)
}

func (s *Server) validateArgs(inv *Invocation) error {
	if s.validate == nil {
		return nil
	}
	for _, call := range inv.Chain() {
		for _, arg := range call.args {
			if !isStructPointer(arg) {
				continue
			}
			if err := s.validate.Struct(arg); err != nil {
				return err
			}
		}
	}
	return nil
}

func isStructPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
}
