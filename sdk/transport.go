package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Transport sends one request to the platform and reports the outcome
// through onComplete. Send must not block: the transport owns whatever
// goroutine performs the I/O and calls onComplete exactly once from it.
//
// A non-nil error means no response was received (network failure,
// canceled context). Any response that was received, whatever its status,
// is reported with a nil error; status handling belongs to the execution
// engine.
//
// Two implementations ship with the SDK:
//   - NewHTTPTransport: net/http with OAuth2 client credentials
//   - NewFastHTTPTransport: valyala/fasthttp with the same authentication
//
// and two decorators that wrap any Transport:
//   - NewCircuitBreakerTransport: fails fast while the platform is failing
//   - NewCachingTransport: serves repeated GETs from a ResponseCache
type Transport interface {
	Send(ctx context.Context, req *HTTPRequest, onComplete func(*HTTPResponse, error))
	Close() error
}

// TransportFunc adapts a synchronous function to Transport. The function
// runs on its own goroutine. Useful for tests and small adapters.
//
// Example:
//
//	t := sdk.TransportFunc(func(ctx context.Context, req *sdk.HTTPRequest) (*sdk.HTTPResponse, error) {
//	    return &sdk.HTTPResponse{StatusCode: 200, Body: []byte(`{"results":[]}`)}, nil
//	})
type TransportFunc func(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, req *HTTPRequest, onComplete func(*HTTPResponse, error)) {
	go func() {
		onComplete(f(ctx, req))
	}()
}

// Close implements Transport.
func (f TransportFunc) Close() error { return nil }

// buildPath builds a URL path with proper escaping for path parameters.
// It replaces placeholders like {0}, {1}, etc. with the provided arguments,
// ensuring all special characters are properly URL-encoded.
//
// This matters for resource keys, which may contain spaces, slashes or
// other URL-unsafe characters.
//
// Example:
//
//	path := buildPath("/key={0}", "my key/with=special&chars")
//	// Result: "/key=my%20key%2Fwith%3Dspecial%26chars"
//
// The function uses QueryEscape for encoding, then replaces '+' with '%20'
// to ensure proper space encoding in URL paths (as '+' is only valid in
// query strings, not paths).
func buildPath(pattern string, args ...string) string {
	path := pattern
	for i, arg := range args {
		placeholder := fmt.Sprintf("{%d}", i)
		escaped := url.QueryEscape(arg)
		escaped = strings.Replace(escaped, "+", "%20", -1)
		path = strings.Replace(path, placeholder, escaped, 1)
	}
	return path
}

// resolveURL joins the project base URL with the request path and query.
func resolveURL(base string, req *HTTPRequest) string {
	return strings.TrimRight(base, "/") + req.PathAndQuery()
}
