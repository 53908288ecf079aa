package pdef

import "net/http"

// Content types of REST responses.
const (
	JSONContentType = "application/json; charset=utf-8"
	TextContentType = "text/plain; charset=utf-8"
)

// RestRequest is a transport-neutral REST request. Path segments are kept
// escaped; query and post values are already decoded.
type RestRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Post   map[string]string
}

// NewRestRequest returns a GET request for path with empty parameter maps.
func NewRestRequest(path string) RestRequest {
	return RestRequest{
		Method: http.MethodGet,
		Path:   path,
		Query:  make(map[string]string),
		Post:   make(map[string]string),
	}
}

// IsPost reports whether the request is an HTTP POST.
func (r RestRequest) IsPost() bool {
	return r.Method == http.MethodPost
}

// RestResponse is a transport-neutral REST response.
type RestResponse struct {
	Status      int
	Body        string
	ContentType string
}

// IsOK reports whether the transport status is 200.
func (r RestResponse) IsOK() bool {
	return r.Status == http.StatusOK
}

func textResponse(status int, body string) RestResponse {
	return RestResponse{Status: status, Body: body, ContentType: TextContentType}
}
