package sdk

import (
	"strings"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// Endpoint binds a resource path to the descriptor of the resource it
// serves. Endpoints are created once per resource kind, usually as package
// variables, and shared read-only by every request that targets them.
//
// Example:
//
//	var Categories = sdk.NewEndpoint("/categories", codec.Of[Category]())
//
//	get := request.GetByID(Categories, "c-1")
type Endpoint[T any] struct {
	path           string
	representation codec.Type[T]
}

// NewEndpoint returns an Endpoint for path. A missing leading slash is
// added and a trailing one removed.
func NewEndpoint[T any](path string, representation codec.Type[T]) Endpoint[T] {
	path = "/" + strings.Trim(path, "/")
	return Endpoint[T]{path: path, representation: representation}
}

// Path returns the resource path relative to the project.
func (e Endpoint[T]) Path() string {
	return e.path
}

// Representation returns the descriptor of the served resource.
func (e Endpoint[T]) Representation() codec.Type[T] {
	return e.representation
}

// Subpath appends pattern to the endpoint path, substituting {0}, {1}, ...
// with the escaped args.
//
// Example:
//
//	Categories.Subpath("/key={0}", "summer sale") // "/categories/key=summer%20sale"
func (e Endpoint[T]) Subpath(pattern string, args ...string) string {
	return e.path + buildPath(pattern, args...)
}

func (e Endpoint[T]) String() string {
	return e.path + " (" + e.representation.Name() + ")"
}
