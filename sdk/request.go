package sdk

import (
	"net/http"

	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// HTTPRequest is the transport-neutral description of one call to the
// platform. Builders produce it; the Client resolves URL and headers before
// handing it to a Transport.
type HTTPRequest struct {
	// Method is the HTTP method (GET, POST, DELETE)
	Method string
	// Path is relative to the project, e.g. "/product-projections/search"
	Path string
	// Query is the ordered query string
	Query params.List
	// Body is the encoded request body, nil for GET and DELETE
	Body []byte
	// Header holds request headers. The Client adds its own on top.
	Header http.Header
	// URL is the absolute URL, set by the Client
	URL string
}

// PathAndQuery renders the path followed by the encoded query string.
func (r *HTTPRequest) PathAndQuery() string {
	q := r.Query.Encode()
	if q == "" {
		return r.Path
	}
	return r.Path + "?" + q
}

// Clone returns a deep copy of r.
func (r *HTTPRequest) Clone() *HTTPRequest {
	out := *r
	out.Query = r.Query.Clone()
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	if r.Header != nil {
		out.Header = r.Header.Clone()
	}
	return &out
}

// Get returns a GET request for path.
func Get(path string, query params.List) *HTTPRequest {
	return &HTTPRequest{Method: http.MethodGet, Path: path, Query: query}
}

// Post returns a POST request for path carrying body.
func Post(path string, query params.List, body []byte) *HTTPRequest {
	return &HTTPRequest{Method: http.MethodPost, Path: path, Query: query, Body: body}
}

// Delete returns a DELETE request for path.
func Delete(path string, query params.List) *HTTPRequest {
	return &HTTPRequest{Method: http.MethodDelete, Path: path, Query: query}
}

// HTTPResponse is the raw answer a Transport hands back.
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Command is anything the execution engine can run: it renders itself into
// an HTTPRequest and names the descriptor its response decodes with.
//
// Query, search, get, create, update and delete builders in the request
// package all implement Command.
type Command[R any] interface {
	// HTTPRequest renders the request. An error here is raised before
	// any I/O and is reported as an invalid argument.
	HTTPRequest() (*HTTPRequest, error)

	// ResultType is the descriptor used to decode a successful body.
	ResultType() codec.Type[R]
}

// StatusExpecter is implemented by commands that succeed with a status
// other than 200 OK.
type StatusExpecter interface {
	ExpectedStatus() []int
}

// AbsentOnNotFound is implemented by commands for which 404 Not Found means
// "no such resource" rather than a failure. Such commands complete with the
// zero value of their result type.
type AbsentOnNotFound interface {
	NotFoundIsAbsent() bool
}

func expectedStatus(cmd any) []int {
	if se, ok := cmd.(StatusExpecter); ok {
		if s := se.ExpectedStatus(); len(s) > 0 {
			return s
		}
	}
	return []int{http.StatusOK}
}

func notFoundIsAbsent(cmd any) bool {
	a, ok := cmd.(AbsentOnNotFound)
	return ok && a.NotFoundIsAbsent()
}
