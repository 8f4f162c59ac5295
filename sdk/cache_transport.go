package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ResponseCache stores raw platform responses by key. The cache package
// provides a Redis-backed implementation.
type ResponseCache interface {
	// Get returns the cached response for key. ok is false on a miss.
	Get(ctx context.Context, key string) (resp *HTTPResponse, ok bool, err error)
	// Set stores resp under key for ttl.
	Set(ctx context.Context, key string, resp *HTTPResponse, ttl time.Duration) error
}

// cachingTransport answers repeated GET requests from a ResponseCache.
// Only 200 responses are stored. Cache failures are logged and treated as
// misses so the cache can never fail a request.
type cachingTransport struct {
	next     Transport
	cache    ResponseCache
	ttl      time.Duration
	observer Observer
	logger   logrus.FieldLogger
}

// NewCachingTransport wraps next with response caching. NewClient applies it
// when the configuration carries a Cache.
func NewCachingTransport(next Transport, cache ResponseCache, ttl time.Duration, observer Observer, logger logrus.FieldLogger) Transport {
	if observer == nil {
		observer = &NoopObserver{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &cachingTransport{next: next, cache: cache, ttl: ttl, observer: observer, logger: logger}
}

// CacheKey returns the key a GET request is cached under.
func CacheKey(req *HTTPRequest) string {
	return "commerce:" + req.Method + ":" + req.URL
}

// Send implements Transport.
func (t *cachingTransport) Send(ctx context.Context, req *HTTPRequest, onComplete func(*HTTPResponse, error)) {
	if req.Method != http.MethodGet {
		t.next.Send(ctx, req, onComplete)
		return
	}

	key := CacheKey(req)
	go func() {
		cached, ok, err := t.cache.Get(ctx, key)
		if err != nil {
			t.logger.WithError(err).WithField("key", key).Warn("response cache lookup failed")
		}
		if ok && err == nil {
			t.observer.OnCacheHit(key)
			onComplete(cached, nil)
			return
		}
		t.observer.OnCacheMiss(key)

		t.next.Send(ctx, req, func(resp *HTTPResponse, err error) {
			if err == nil && resp.StatusCode == http.StatusOK {
				if setErr := t.cache.Set(context.WithoutCancel(ctx), key, resp, t.ttl); setErr != nil {
					t.logger.WithError(setErr).WithField("key", key).Warn("response cache store failed")
				}
			}
			onComplete(resp, err)
		})
	}()
}

// Close implements Transport.
func (t *cachingTransport) Close() error {
	return t.next.Close()
}
