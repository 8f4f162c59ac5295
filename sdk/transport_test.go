package sdk

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/sdk/params"
	"github.com/birbparty/commerce-sdk/sdk/testdata"
)

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		args    []string
		want    string
	}{
		{
			name:    "no placeholders",
			pattern: "/categories",
			args:    []string{},
			want:    "/categories",
		},
		{
			name:    "single placeholder",
			pattern: "/{0}",
			args:    []string{"cat-1"},
			want:    "/cat-1",
		},
		{
			name:    "multiple placeholders",
			pattern: "/{0}/{1}",
			args:    []string{"settings", "limits"},
			want:    "/settings/limits",
		},
		{
			name:    "URL encoding",
			pattern: "/key={0}",
			args:    []string{"summer sale"},
			want:    "/key=summer%20sale",
		},
		{
			name:    "special characters",
			pattern: "/key={0}",
			args:    []string{"a/b?c=1&d=e"},
			want:    "/key=a%2Fb%3Fc%3D1%26d%3De",
		},
		{
			name:    "unicode characters",
			pattern: "/key={0}",
			args:    []string{"测试键"},
			want:    "/key=%E6%B5%8B%E8%AF%95%E9%94%AE",
		},
		{
			name:    "plus sign",
			pattern: "/key={0}",
			args:    []string{"a+b"},
			want:    "/key=a%2Bb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildPath(tt.pattern, tt.args...)
			if got != tt.want {
				t.Errorf("buildPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	req := Get("/categories", params.List{}.Add("where", `key = "a"`).Add("limit", "5"))
	assert.Equal(t, `http://localhost:8080/shop/categories?where=key+%3D+%22a%22&limit=5`,
		resolveURL("http://localhost:8080/shop/", req))

	project := Get("", nil)
	assert.Equal(t, "http://localhost:8080/shop", resolveURL("http://localhost:8080/shop", project))
}

func TestEndpoint(t *testing.T) {
	e := NewEndpoint("categories/", categoryType)
	assert.Equal(t, "/categories", e.Path())
	assert.Equal(t, "/categories/key=summer%20sale", e.Subpath("/key={0}", "summer sale"))
	assert.Equal(t, "/categories (sdk.testCategory)", e.String())
	assert.Equal(t, categoryType.Name(), e.Representation().Name())
}

func TestHTTPRequest_Clone(t *testing.T) {
	orig := Post("/carts", params.List{}.Add("expand", "lineItems"), []byte(`{"a":1}`))
	orig.Header = http.Header{"X-A": []string{"1"}}

	clone := orig.Clone()
	clone.Query[0].Value = "changed"
	clone.Body[0] = '['
	clone.Header.Set("X-A", "2")

	assert.Equal(t, "lineItems", orig.Query[0].Value)
	assert.Equal(t, `{"a":1}`, string(orig.Body))
	assert.Equal(t, "1", orig.Header.Get("X-A"))
	assert.Equal(t, "/carts?expand=lineItems", orig.PathAndQuery())
}

func send(t *testing.T, transport Transport, req *HTTPRequest) (*HTTPResponse, error) {
	t.Helper()
	type outcome struct {
		resp *HTTPResponse
		err  error
	}
	done := make(chan outcome, 1)
	transport.Send(context.Background(), req, func(resp *HTTPResponse, err error) {
		done <- outcome{resp, err}
	})
	select {
	case o := <-done:
		return o.resp, o.err
	case <-time.After(5 * time.Second):
		t.Fatal("transport did not complete")
		return nil, nil
	}
}

func TestHTTPTransport_Send(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.WithJSON("POST /shop/carts", http.StatusCreated, testdata.CartJSON)
	server.WithErrorResponse("GET /shop/carts/missing", http.StatusNotFound, "ResourceNotFound", "missing")

	config := DefaultConfig().WithProject("shop").WithAPIURL(server.URL)
	require.NoError(t, config.Validate())
	transport, err := NewHTTPTransport(config)
	require.NoError(t, err)
	defer transport.Close()

	t.Run("body and headers", func(t *testing.T) {
		req := Post("/carts", nil, []byte(`{"currency":"EUR"}`))
		req.URL = server.URL + "/shop/carts"
		req.Header = http.Header{"X-Trace-Id": []string{"trace-123"}}

		resp, err := send(t, transport, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, testdata.CartJSON, string(resp.Body))
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		recorded, ok := server.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "application/json", recorded.Headers.Get("Content-Type"))
		assert.Equal(t, "trace-123", recorded.Headers.Get("X-Trace-Id"))
		assert.JSONEq(t, `{"currency":"EUR"}`, string(recorded.Body))
	})

	t.Run("error status is not a transport error", func(t *testing.T) {
		req := Get("/carts/missing", nil)
		req.URL = server.URL + "/shop/carts/missing"

		resp, err := send(t, transport, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad URL", func(t *testing.T) {
		req := Get("/carts", nil)
		req.URL = "://nowhere"

		_, err := send(t, transport, req)
		assert.Error(t, err)
	})
}

func TestHTTPTransport_Timeout(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.WithDelayedResponse("GET /shop/slow", 500*time.Millisecond, func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		return http.StatusOK, "{}"
	})

	config := DefaultConfig().WithProject("shop").WithAPIURL(server.URL).WithTimeout(50 * time.Millisecond)
	require.NoError(t, config.Validate())
	transport, err := NewHTTPTransport(config)
	require.NoError(t, err)
	defer transport.Close()

	req := Get("/slow", nil)
	req.URL = server.URL + "/shop/slow"

	_, err = send(t, transport, req)
	require.Error(t, err)

	classified := transportError("GET /slow", err)
	assert.True(t, errors.Is(classified, ErrTimeout), "got %v", classified)
}

func TestHTTPTransport_ConnectionPool(t *testing.T) {
	config := DefaultConfig().WithProject("shop")
	config.TransportConfig = TransportConfig{MaxIdleConns: 7, MaxConnsPerHost: 3, IdleConnTimeout: time.Minute}

	transport, err := newHTTPTransport(config)
	require.NoError(t, err)

	assert.Equal(t, 7, transport.base.MaxIdleConns)
	assert.Equal(t, 3, transport.base.MaxConnsPerHost)
	assert.Equal(t, time.Minute, transport.base.IdleConnTimeout)
	assert.Equal(t, config.Timeout, transport.client.Timeout)
	assert.Same(t, transport.base, transport.client.Transport, "no token transport without credentials")
}

func TestTransportFunc(t *testing.T) {
	var called bool
	transport := TransportFunc(func(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
		called = true
		return &HTTPResponse{StatusCode: http.StatusTeapot}, nil
	})

	resp, err := send(t, transport, Get("/", nil))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.NoError(t, transport.Close())
}

func BenchmarkBuildPath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = buildPath("/{0}/{1}", "settings", "checkout limits")
	}
}
