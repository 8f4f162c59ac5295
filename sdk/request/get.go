package request

import (
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// GetBuilder fetches one resource. A 404 or an empty body completes with a
// nil result instead of an error.
type GetBuilder[T any] struct {
	endpoint sdk.Endpoint[T]
	path     string
	expand   []string
	invalid  error
}

// GetByID fetches the resource with id: <endpoint>/<id>.
func GetByID[T any](endpoint sdk.Endpoint[T], id string) GetBuilder[T] {
	g := GetBuilder[T]{endpoint: endpoint, path: endpoint.Subpath("/{0}", id)}
	if id == "" {
		g.invalid = sdk.InvalidArgument("Please provide a non-empty id for %s.", endpoint.Path())
	}
	return g
}

// GetByKey fetches the resource with the user-defined key: <endpoint>/key=<key>.
func GetByKey[T any](endpoint sdk.Endpoint[T], key string) GetBuilder[T] {
	g := GetBuilder[T]{endpoint: endpoint, path: endpoint.Subpath("/key={0}", key)}
	if key == "" {
		g.invalid = sdk.InvalidArgument("Please provide a non-empty key for %s.", endpoint.Path())
	}
	return g
}

// GetAt fetches the resource at a custom subpath of endpoint, with {0},
// {1}, ... in pattern replaced by the escaped args.
//
//	GetAt(CustomObjects, "/{0}/{1}", container, key)
func GetAt[T any](endpoint sdk.Endpoint[T], pattern string, args ...string) GetBuilder[T] {
	g := GetBuilder[T]{endpoint: endpoint, path: endpoint.Subpath(pattern, args...)}
	for i, a := range args {
		if a == "" {
			g.invalid = sdk.InvalidArgument("argument %d of %s%s must not be empty", i, endpoint.Path(), pattern)
			break
		}
	}
	return g
}

// WithExpansionPaths returns a copy that also expands paths.
func (g GetBuilder[T]) WithExpansionPaths(paths ...string) GetBuilder[T] {
	g.expand = appendCopy(g.expand, nonEmpty(paths)...)
	return g
}

// HTTPRequest implements sdk.Command.
func (g GetBuilder[T]) HTTPRequest() (*sdk.HTTPRequest, error) {
	if g.invalid != nil {
		return nil, g.invalid
	}
	var query params.List
	for _, e := range g.expand {
		query = query.Add("expand", e)
	}
	return sdk.Get(g.path, query), nil
}

// ResultType implements sdk.Command.
func (g GetBuilder[T]) ResultType() codec.Type[*T] {
	return codec.Ptr(g.endpoint.Representation())
}

// NotFoundIsAbsent implements sdk.AbsentOnNotFound.
func (g GetBuilder[T]) NotFoundIsAbsent() bool {
	return true
}
