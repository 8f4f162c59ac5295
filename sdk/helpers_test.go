package sdk

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/params"
	"github.com/birbparty/commerce-sdk/sdk/testdata"
)

type testCategory struct {
	ID      string            `json:"id"`
	Version int64             `json:"version"`
	Key     string            `json:"key"`
	Name    map[string]string `json:"name"`
}

var (
	categoryType = codec.Of[testCategory]()
	categoryPage = model.PagedQueryResultOf(categoryType)
)

// testCommand is a hand-rendered command. The request package builds the
// real ones on top of this package, so it cannot be used here.
type testCommand[R any] struct {
	req      *HTTPRequest
	err      error
	result   codec.Type[R]
	expected []int
	absent   bool
}

func (c testCommand[R]) HTTPRequest() (*HTTPRequest, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.req.Clone(), nil
}

func (c testCommand[R]) ResultType() codec.Type[R] { return c.result }

func (c testCommand[R]) ExpectedStatus() []int { return c.expected }

func (c testCommand[R]) NotFoundIsAbsent() bool { return c.absent }

func (c testCommand[R]) withPath(path string) testCommand[R] {
	c.req = c.req.Clone()
	c.req.Path = path
	return c
}

func (c testCommand[R]) withQuery(name, value string) testCommand[R] {
	c.req = c.req.Clone()
	c.req.Query = c.req.Query.Add(name, value)
	return c
}

func queryCategories(query params.List) testCommand[model.PagedQueryResult[testCategory]] {
	return testCommand[model.PagedQueryResult[testCategory]]{
		req:    Get("/categories", query),
		result: categoryPage,
	}
}

func getCategory(id string) testCommand[*testCategory] {
	return testCommand[*testCategory]{
		req:    Get(buildPath("/categories/{0}", id), nil),
		result: codec.Ptr(categoryType),
		absent: true,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(server *testdata.MockServer) *Config {
	return DefaultConfig().
		WithProject("test").
		WithAPIURL(server.URL).
		WithLogger(quietLogger())
}

func newTestClient(t *testing.T, config *Config) *Client {
	t.Helper()
	client, err := NewClient(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
