package sdk

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the commerce client.
// Only ProjectKey is required; everything else has a sensible default.
//
// Configuration can be built using the fluent builder pattern:
//
//	config := sdk.DefaultConfig().
//	    WithProject("my-shop").
//	    WithCredentials("client-id", "client-secret").
//	    WithTimeout(10 * time.Second).
//	    WithCircuitBreaker(sdk.DefaultCircuitBreakerConfig())
//
//	client, err := sdk.NewClient(config)
type Config struct {
	// ProjectKey selects the project all requests are sent to.
	ProjectKey string

	// APIURL is the base URL of the platform API.
	// Default: "http://localhost:8080"
	APIURL string

	// AuthURL is the base URL of the authorization server. The token
	// endpoint is AuthURL + "/oauth/token".
	// Default: same as APIURL
	AuthURL string

	// ClientID and ClientSecret are the API client credentials. When
	// ClientID is empty, requests are sent without authorization.
	ClientID     string
	ClientSecret string

	// Scopes requested for the access token.
	Scopes []string

	// Timeout is the HTTP request timeout.
	// This includes connection time, any redirects, and reading the response body.
	// Default: 30s
	Timeout time.Duration

	// TransportConfig holds HTTP transport settings.
	// Configures connection pooling and keep-alive behavior.
	TransportConfig TransportConfig

	// Headers are custom headers to include in all requests.
	Headers map[string]string

	// UserAgent is sent with every request.
	// Default: "commerce-sdk-go/1.0"
	UserAgent string

	// CircuitBreakerConfig holds circuit breaker settings.
	// If nil, circuit breaker is disabled.
	CircuitBreakerConfig *CircuitBreakerConfig

	// EnablePerEndpointCircuitBreaker enables per-endpoint circuit breakers.
	// When true, each endpoint has its own circuit breaker state.
	// When false, a single circuit breaker is used for all endpoints.
	EnablePerEndpointCircuitBreaker bool

	// Cache enables response caching for GET requests.
	// If nil, nothing is cached.
	Cache ResponseCache

	// CacheTTL is how long cached responses stay valid.
	// Default: 1m
	CacheTTL time.Duration

	// Observer for monitoring operations.
	// If nil, NoopObserver is used.
	Observer Observer

	// Logger receives request traces and backend failures.
	// If nil, the logrus standard logger is used.
	Logger logrus.FieldLogger

	// Transport overrides the transport NewClient would build.
	Transport Transport
}

// TransportConfig holds HTTP transport configuration for connection pooling.
// These settings control how the SDK manages HTTP connections.
type TransportConfig struct {
	// MaxIdleConns controls the maximum number of idle connections
	// across all hosts. Zero means no limit.
	// Default: 100
	MaxIdleConns int

	// MaxConnsPerHost controls the maximum connections per host.
	// Default: 10
	MaxConnsPerHost int

	// IdleConnTimeout is the maximum time an idle connection will remain idle
	// before closing itself.
	// Default: 90s
	IdleConnTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults suitable for most use cases.
// The default configuration includes:
//   - API URL: http://localhost:8080
//   - Timeout: 30 seconds
//   - Connection pooling: 100 idle connections, 10 per host
//   - No retries, no circuit breaker, no cache
func DefaultConfig() *Config {
	return &Config{
		APIURL:  "http://localhost:8080",
		Timeout: 30 * time.Second,
		TransportConfig: TransportConfig{
			MaxIdleConns:    100,
			MaxConnsPerHost: 10,
			IdleConnTimeout: 90 * time.Second,
		},
		Headers:   make(map[string]string),
		UserAgent: "commerce-sdk-go/1.0",
		CacheTTL:  time.Minute,
		Observer:  &NoopObserver{},
	}
}

// WithProject sets the project key.
func (c *Config) WithProject(projectKey string) *Config {
	c.ProjectKey = projectKey
	return c
}

// WithAPIURL sets the base URL of the platform API.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithAPIURL("https://api.europe-west1.example.com")
func (c *Config) WithAPIURL(url string) *Config {
	c.APIURL = url
	return c
}

// WithAuthURL sets the base URL of the authorization server.
func (c *Config) WithAuthURL(url string) *Config {
	c.AuthURL = url
	return c
}

// WithCredentials sets the API client credentials and optional scopes.
func (c *Config) WithCredentials(clientID, clientSecret string, scopes ...string) *Config {
	c.ClientID = clientID
	c.ClientSecret = clientSecret
	c.Scopes = scopes
	return c
}

// WithTimeout sets the request timeout for all operations.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithHeader adds a custom header to be sent with all requests.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithHeader("X-Correlation-ID", "checkout-42")
func (c *Config) WithHeader(key, value string) *Config {
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	c.Headers[key] = value
	return c
}

// WithCircuitBreaker enables and configures circuit breaker protection.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithCircuitBreaker(sdk.CircuitBreakerConfig{
//	        FailureThreshold: 5,
//	        SuccessThreshold: 2,
//	        Timeout: 30 * time.Second,
//	    })
func (c *Config) WithCircuitBreaker(config CircuitBreakerConfig) *Config {
	c.CircuitBreakerConfig = &config
	return c
}

// WithPerEndpointCircuitBreaker enables per-endpoint circuit breakers.
// When enabled, each resource path maintains its own circuit breaker state.
func (c *Config) WithPerEndpointCircuitBreaker() *Config {
	c.EnablePerEndpointCircuitBreaker = true
	return c
}

// WithCache enables caching of GET responses for ttl.
//
// Example:
//
//	store, _ := cache.NewRedisCache(cache.DefaultConfig())
//	config := sdk.DefaultConfig().WithCache(store, 5*time.Minute)
func (c *Config) WithCache(cache ResponseCache, ttl time.Duration) *Config {
	c.Cache = cache
	c.CacheTTL = ttl
	return c
}

// WithObserver sets a custom observer for monitoring SDK operations.
func (c *Config) WithObserver(observer Observer) *Config {
	c.Observer = observer
	return c
}

// WithLogger sets the logger used for request traces and failures.
func (c *Config) WithLogger(logger logrus.FieldLogger) *Config {
	c.Logger = logger
	return c
}

// WithTransport replaces the default net/http transport.
func (c *Config) WithTransport(transport Transport) *Config {
	c.Transport = transport
	return c
}

// Validate validates the configuration and sets defaults for missing values.
// This is called automatically by NewClient.
//
// Returns an error wrapping ErrInvalidConfig if the configuration is
// unusable (e.g., missing project key).
func (c *Config) Validate() error {
	if c.ProjectKey == "" {
		return fmt.Errorf("%w: project key is required", ErrInvalidConfig)
	}
	if c.APIURL == "" {
		return fmt.Errorf("%w: API URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: API URL must have a scheme and host: %q", ErrInvalidConfig, c.APIURL)
	}
	if c.ClientID != "" && c.ClientSecret == "" {
		return fmt.Errorf("%w: client secret is required with a client id", ErrInvalidConfig)
	}
	if c.AuthURL == "" {
		c.AuthURL = c.APIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.TransportConfig.MaxIdleConns <= 0 {
		c.TransportConfig.MaxIdleConns = 100
	}
	if c.TransportConfig.MaxConnsPerHost <= 0 {
		c.TransportConfig.MaxConnsPerHost = 10
	}
	if c.TransportConfig.IdleConnTimeout <= 0 {
		c.TransportConfig.IdleConnTimeout = 90 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "commerce-sdk-go/1.0"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
	if c.Observer == nil {
		c.Observer = &NoopObserver{}
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.CircuitBreakerConfig != nil {
		if c.CircuitBreakerConfig.FailureThreshold <= 0 {
			c.CircuitBreakerConfig.FailureThreshold = 5
		}
		if c.CircuitBreakerConfig.SuccessThreshold <= 0 {
			c.CircuitBreakerConfig.SuccessThreshold = 2
		}
		if c.CircuitBreakerConfig.Timeout <= 0 {
			c.CircuitBreakerConfig.Timeout = 30 * time.Second
		}
		if c.CircuitBreakerConfig.HalfOpenRequests <= 0 {
			c.CircuitBreakerConfig.HalfOpenRequests = 3
		}
	}
	return nil
}

// projectURL is the base every request path is appended to.
func (c *Config) projectURL() string {
	return strings.TrimRight(c.APIURL, "/") + "/" + url.PathEscape(c.ProjectKey)
}

func (c *Config) hasCredentials() bool {
	return c.ClientID != ""
}

// ConfigFromEnv returns DefaultConfig overridden by the COMMERCE_*
// environment variables:
//
//	COMMERCE_PROJECT_KEY, COMMERCE_API_URL, COMMERCE_AUTH_URL,
//	COMMERCE_CLIENT_ID, COMMERCE_CLIENT_SECRET, COMMERCE_SCOPES (space separated),
//	COMMERCE_TIMEOUT (Go duration)
func ConfigFromEnv() *Config {
	c := DefaultConfig()
	c.ProjectKey = getEnv("COMMERCE_PROJECT_KEY", c.ProjectKey)
	c.APIURL = getEnv("COMMERCE_API_URL", c.APIURL)
	c.AuthURL = getEnv("COMMERCE_AUTH_URL", c.AuthURL)
	c.ClientID = getEnv("COMMERCE_CLIENT_ID", c.ClientID)
	c.ClientSecret = getEnv("COMMERCE_CLIENT_SECRET", c.ClientSecret)
	if scopes := getEnv("COMMERCE_SCOPES", ""); scopes != "" {
		c.Scopes = strings.Fields(scopes)
	}
	if d, err := time.ParseDuration(getEnv("COMMERCE_TIMEOUT", "")); err == nil {
		c.Timeout = d
	}
	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// fileConfig is the YAML layout read by LoadConfigFile.
type fileConfig struct {
	ProjectKey   string            `yaml:"project_key"`
	APIURL       string            `yaml:"api_url"`
	AuthURL      string            `yaml:"auth_url"`
	ClientID     string            `yaml:"client_id"`
	ClientSecret string            `yaml:"client_secret"`
	Scopes       []string          `yaml:"scopes"`
	Timeout      string            `yaml:"timeout"`
	Headers      map[string]string `yaml:"headers"`
	Circuit      *struct {
		FailureThreshold int    `yaml:"failure_threshold"`
		SuccessThreshold int    `yaml:"success_threshold"`
		Timeout          string `yaml:"timeout"`
		PerEndpoint      bool   `yaml:"per_endpoint"`
	} `yaml:"circuit_breaker"`
}

// LoadConfigFile reads a YAML configuration file on top of DefaultConfig.
//
// Example file:
//
//	project_key: my-shop
//	api_url: https://api.example.com
//	client_id: abc
//	client_secret: s3cr3t
//	timeout: 10s
//	circuit_breaker:
//	  failure_threshold: 5
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := DefaultConfig()
	if fc.ProjectKey != "" {
		c.ProjectKey = fc.ProjectKey
	}
	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	c.AuthURL = fc.AuthURL
	c.ClientID = fc.ClientID
	c.ClientSecret = fc.ClientSecret
	c.Scopes = fc.Scopes
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout: %v", ErrInvalidConfig, err)
		}
		c.Timeout = d
	}
	for k, v := range fc.Headers {
		c.WithHeader(k, v)
	}
	if fc.Circuit != nil {
		cb := DefaultCircuitBreakerConfig()
		if fc.Circuit.FailureThreshold > 0 {
			cb.FailureThreshold = fc.Circuit.FailureThreshold
		}
		if fc.Circuit.SuccessThreshold > 0 {
			cb.SuccessThreshold = fc.Circuit.SuccessThreshold
		}
		if fc.Circuit.Timeout != "" {
			d, err := time.ParseDuration(fc.Circuit.Timeout)
			if err != nil {
				return nil, fmt.Errorf("%w: circuit_breaker.timeout: %v", ErrInvalidConfig, err)
			}
			cb.Timeout = d
		}
		c.WithCircuitBreaker(cb)
		c.EnablePerEndpointCircuitBreaker = fc.Circuit.PerEndpoint
	}
	return c, nil
}
