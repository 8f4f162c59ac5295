package sdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// httpTransport is the default Transport, built on net/http. When the
// configuration carries client credentials, every request is authorized
// with a bearer token obtained and refreshed through the OAuth2 client
// credentials flow.
type httpTransport struct {
	// client is the underlying HTTP client, token-aware when credentials are set
	client *http.Client
	// base is the connection pool shared with the token client
	base *http.Transport
	// config holds the SDK configuration
	config *Config
}

// NewHTTPTransport creates the net/http transport described by config.
// NewClient calls it when no Transport is configured.
func NewHTTPTransport(config *Config) (Transport, error) {
	return newHTTPTransport(config)
}

func newHTTPTransport(config *Config) (*httpTransport, error) {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.TransportConfig.MaxIdleConns,
		MaxConnsPerHost:     config.TransportConfig.MaxConnsPerHost,
		IdleConnTimeout:     config.TransportConfig.IdleConnTimeout,
		DisableCompression:  false,
		DisableKeepAlives:   false,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	client := &http.Client{
		Transport: base,
		Timeout:   config.Timeout,
	}

	if config.hasCredentials() {
		tokenClient := &http.Client{Transport: base, Timeout: config.Timeout}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, tokenClient)
		client = &http.Client{
			Transport: &oauth2.Transport{
				Source: config.tokenSource(ctx),
				Base:   base,
			},
			Timeout: config.Timeout,
		}
	}

	return &httpTransport{
		client: client,
		base:   base,
		config: config,
	}, nil
}

// tokenSource returns a caching token source for the configured client
// credentials.
func (c *Config) tokenSource(ctx context.Context) oauth2.TokenSource {
	cc := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     strings.TrimRight(c.AuthURL, "/") + "/oauth/token",
		Scopes:       c.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return cc.TokenSource(ctx)
}

// Send performs the request on its own goroutine.
func (t *httpTransport) Send(ctx context.Context, req *HTTPRequest, onComplete func(*HTTPResponse, error)) {
	go func() {
		onComplete(t.do(ctx, req))
	}()
}

// do performs a single HTTP request and reads the whole body
func (t *httpTransport) do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "reading response", Err: err}
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Close releases idle connections
func (t *httpTransport) Close() error {
	t.base.CloseIdleConnections()
	return nil
}
