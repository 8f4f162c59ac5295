//go:build integration

package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/birbparty/commerce-sdk/internal/testutil"
	"github.com/birbparty/commerce-sdk/sdk"
)

type RedisCacheSuite struct {
	suite.Suite
	ctx       context.Context
	container *testutil.RedisContainer
	cache     *RedisCache
}

func (s *RedisCacheSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := testutil.StartRedis(s.ctx)
	require.NoError(s.T(), err)
	s.container = container

	config := DefaultConfig()
	config.Host = container.Host
	config.Port = container.Port
	config.KeyPrefix = "test:"

	rc, err := NewRedisCache(config)
	require.NoError(s.T(), err)
	s.cache = rc
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RedisCacheSuite) TestRoundTrip() {
	resp := &sdk.HTTPResponse{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(`{"id":"c1"}`),
	}
	require.NoError(s.T(), s.cache.Set(s.ctx, "commerce:GET:/categories/c1", resp, time.Minute))

	got, ok, err := s.cache.Get(s.ctx, "commerce:GET:/categories/c1")
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), resp.StatusCode, got.StatusCode)
	assert.Equal(s.T(), resp.Body, got.Body)
	assert.Equal(s.T(), "application/json", got.Header.Get("Content-Type"))

	ttl, err := s.cache.TTL(s.ctx, "commerce:GET:/categories/c1")
	require.NoError(s.T(), err)
	assert.Greater(s.T(), ttl, time.Duration(0))
}

func (s *RedisCacheSuite) TestMiss() {
	got, ok, err := s.cache.Get(s.ctx, "nope")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
	assert.Nil(s.T(), got)
}

func (s *RedisCacheSuite) TestInvalidate() {
	for _, k := range []string{"inv:a", "inv:b", "other:c"} {
		require.NoError(s.T(), s.cache.Set(s.ctx, k, &sdk.HTTPResponse{StatusCode: 200}, 0))
	}

	removed, err := s.cache.Invalidate(s.ctx, "inv:")
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, removed)

	_, ok, err := s.cache.Get(s.ctx, "other:c")
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	require.NoError(s.T(), s.cache.Delete(s.ctx, "other:c"))
	_, ok, _ = s.cache.Get(s.ctx, "other:c")
	assert.False(s.T(), ok)
}

func (s *RedisCacheSuite) TestThroughClient() {
	calls := 0
	transport := sdk.TransportFunc(func(ctx context.Context, req *sdk.HTTPRequest) (*sdk.HTTPResponse, error) {
		calls++
		return &sdk.HTTPResponse{StatusCode: http.StatusOK, Body: []byte(`{"key":"p","name":"Shop"}`)}, nil
	})

	config := sdk.DefaultConfig().
		WithProject("cached").
		WithAPIURL("http://platform.test").
		WithTransport(transport).
		WithCache(s.cache, time.Minute)
	client, err := sdk.NewClient(config)
	require.NoError(s.T(), err)
	defer client.Close()

	type project struct {
		Key string `json:"key"`
	}
	cmd := getCommand[project]{path: "/"}

	for i := 0; i < 3; i++ {
		p, err := sdk.ExecuteBlocking(s.ctx, client, cmd)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "p", p.Key)
	}
	assert.Equal(s.T(), 1, calls)
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}
