package pdef

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
)

// Handler returns an http.Handler for use with http.ListenAndServe or other
// HTTP servers. The returned handler includes all configured middleware.
//
// Example:
//
//	srv := pdef.NewServer(desc, pdef.Singleton(impl)).WithMiddleware(cors)
//	http.ListenAndServe(":8080", srv.Handler())
func (s *Server) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(s.serveHTTP)
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	return h
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log().Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			writeResponse(w, textResponse(http.StatusInternalServerError, fallbackMessage), s.logger)
		}
	}()

	req, err := s.readRequest(w, r)
	if err != nil {
		writeResponse(w, s.errorResponse(r.Context(), err), s.logger)
		return
	}

	ctx := withHTTP(r.Context(), w, r)
	writeResponse(w, s.Handle(ctx, req), s.logger)
}

// readRequest converts an HTTP request to a RestRequest. The path is kept
// escaped so that encoded slashes inside arguments survive splitting.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (RestRequest, error) {
	req := NewRestRequest(r.URL.EscapedPath())

	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		req.Method = http.MethodPost
		if s.maxRequestBodySize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestBodySize)
		}
		if err := r.ParseForm(); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return req, Errorf(CodeClientError, "Request body too large")
			}
			return req, Errorf(CodeClientError, "Malformed request body")
		}
		flatten(req.Post, r.PostForm)
	default:
		return req, MethodNotAllowed("Method %s not allowed", r.Method)
	}

	flatten(req.Query, r.URL.Query())
	return req, nil
}

// flatten keeps the first value of every key.
func flatten(dst map[string]string, values url.Values) {
	for key, vs := range values {
		if len(vs) > 0 {
			dst[key] = vs[0]
		}
	}
}

func writeResponse(w http.ResponseWriter, resp RestResponse, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	if _, err := io.WriteString(w, resp.Body); err != nil {
		// Headers already sent, nothing we can do.
		logger.Error("failed to write response",
			slog.Int("status", resp.Status),
			slog.Any("error", err))
	}
}
