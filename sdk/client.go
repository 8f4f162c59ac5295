package sdk

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies the SDK's spans.
const tracerName = "github.com/birbparty/commerce-sdk/sdk"

// CorrelationIDHeader carries the per-request correlation id.
const CorrelationIDHeader = "X-Correlation-ID"

// Client executes commands against one project of the commerce platform.
// It holds the transport, configuration, logger and observer shared by every
// request, and is safe for concurrent use by multiple goroutines.
//
// Commands are executed with the package-level Execute and ExecuteBlocking
// functions, which carry the result type as a type parameter:
//
//	client, err := sdk.NewClient(sdk.ConfigFromEnv())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	search := request.NewSearch(resources.ProductProjections).
//	    Text("en", "shirt").
//	    Limit(20)
//	page, err := sdk.ExecuteBlocking(ctx, client, search)
type Client struct {
	transport Transport
	config    *Config
	baseURL   string
	logger    logrus.FieldLogger
	observer  Observer
	tracer    trace.Tracer
	mu        sync.RWMutex
	closed    bool
}

// NewClient creates a client with the provided configuration.
// If config is nil, ConfigFromEnv is used.
//
// Unless config.Transport is set, a net/http transport is created. The
// transport is then wrapped, innermost first, with circuit breaking
// (config.CircuitBreakerConfig) and response caching (config.Cache).
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithProject("my-shop").
//	    WithAPIURL("https://api.example.com").
//	    WithCredentials(clientID, clientSecret)
//	client, err := sdk.NewClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = ConfigFromEnv()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport := config.Transport
	if transport == nil {
		t, err := newHTTPTransport(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport: %w", err)
		}
		transport = t
	}
	if config.CircuitBreakerConfig != nil {
		transport = NewCircuitBreakerTransport(transport, *config.CircuitBreakerConfig,
			config.EnablePerEndpointCircuitBreaker, config.Observer)
	}
	if config.Cache != nil {
		transport = NewCachingTransport(transport, config.Cache, config.CacheTTL, config.Observer, config.Logger)
	}

	return &Client{
		transport: transport,
		config:    config,
		baseURL:   config.projectURL(),
		logger:    config.Logger.WithField("project", config.ProjectKey),
		observer:  config.Observer,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// ProjectKey returns the project the client talks to.
func (c *Client) ProjectKey() string {
	return c.config.ProjectKey
}

// BaseURL returns the URL every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close closes the client and releases resources. Close is safe to call
// multiple times.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return c.transport.Close()
}

// checkClosed checks if the client is closed
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return NewError(ErrorTypeUnknown, "client is closed", ErrClientClosed)
	}
	return nil
}

// prepare returns a copy of req with the absolute URL and client headers set.
func (c *Client) prepare(req *HTTPRequest) *HTTPRequest {
	out := req.Clone()
	out.URL = resolveURL(c.baseURL, out)
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	out.Header.Set("Accept", "application/json")
	out.Header.Set("User-Agent", c.config.UserAgent)
	for key, value := range c.config.Headers {
		out.Header.Set(key, value)
	}
	if out.Header.Get(CorrelationIDHeader) == "" {
		out.Header.Set(CorrelationIDHeader, uuid.NewString())
	}
	return out
}
