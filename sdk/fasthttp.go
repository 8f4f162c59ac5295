package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/oauth2"
)

// fastHTTPTransport sends requests with valyala/fasthttp. It trades the
// richer net/http feature set for fewer allocations on hot search paths.
type fastHTTPTransport struct {
	client  *fasthttp.Client
	timeout time.Duration
	tokens  oauth2.TokenSource
}

// NewFastHTTPTransport creates a Transport built on fasthttp. Credentials in
// config are honored the same way as by the net/http transport; the token
// endpoint itself is called through net/http. A canceled context completes
// the request at once; the connection it was using is released when the
// underlying exchange ends or hits its deadline.
//
// Example:
//
//	t, _ := sdk.NewFastHTTPTransport(config)
//	client, err := sdk.NewClient(config.WithTransport(t))
func NewFastHTTPTransport(config *Config) (Transport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	t := &fastHTTPTransport{
		client: &fasthttp.Client{
			Name:                "commerce-sdk-go",
			MaxConnsPerHost:     config.TransportConfig.MaxConnsPerHost,
			MaxIdleConnDuration: config.TransportConfig.IdleConnTimeout,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
		},
		timeout: config.Timeout,
	}
	if config.hasCredentials() {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: config.Timeout})
		t.tokens = oauth2.ReuseTokenSource(nil, config.tokenSource(ctx))
	}
	return t, nil
}

// Send performs the request on its own goroutine.
func (t *fastHTTPTransport) Send(ctx context.Context, req *HTTPRequest, onComplete func(*HTTPResponse, error)) {
	go func() {
		onComplete(t.do(ctx, req))
	}()
}

func (t *fastHTTPTransport) do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	freq := fasthttp.AcquireRequest()
	freq.SetRequestURI(req.URL)
	freq.Header.SetMethod(req.Method)
	if req.Body != nil {
		freq.Header.SetContentType("application/json")
		freq.SetBody(req.Body)
	}
	for key, values := range req.Header {
		for _, v := range values {
			freq.Header.Add(key, v)
		}
	}
	if t.tokens != nil {
		tok, err := t.tokens.Token()
		if err != nil {
			fasthttp.ReleaseRequest(freq)
			return nil, &NetworkError{Op: "fetching access token", Err: err}
		}
		freq.Header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	}

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// fasthttp has no context support, so the round trip races ctx. The
	// goroutine owns freq and fresp and releases them once DoDeadline
	// returns, even when the caller has already gone.
	type result struct {
		resp *HTTPResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		fresp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(freq)
		defer fasthttp.ReleaseResponse(fresp)

		if err := t.client.DoDeadline(freq, fresp, deadline); err != nil {
			done <- result{err: err}
			return
		}
		done <- result{resp: toHTTPResponse(fresp)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if r.err == fasthttp.ErrTimeout {
				return nil, context.DeadlineExceeded
			}
			return nil, r.err
		}
		return r.resp, nil
	}
}

func toHTTPResponse(fresp *fasthttp.Response) *HTTPResponse {
	header := make(http.Header)
	fresp.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})
	return &HTTPResponse{
		StatusCode: fresp.StatusCode(),
		Header:     header,
		Body:       append([]byte(nil), fresp.Body()...),
	}
}

// Close releases idle connections
func (t *fastHTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
