package request

import (
	"net/http"
	"strconv"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// CreateCommand posts a draft D and decodes the created resource T.
type CreateCommand[D, T any] struct {
	endpoint sdk.Endpoint[T]
	draft    D
	expand   []string
}

// Create posts draft to endpoint. The draft is validated against its
// `validate` struct tags before anything is sent.
func Create[D, T any](endpoint sdk.Endpoint[T], draft D) CreateCommand[D, T] {
	return CreateCommand[D, T]{endpoint: endpoint, draft: draft}
}

// WithExpansionPaths returns a copy that expands paths in the response.
func (c CreateCommand[D, T]) WithExpansionPaths(paths ...string) CreateCommand[D, T] {
	c.expand = appendCopy(c.expand, nonEmpty(paths)...)
	return c
}

// HTTPRequest implements sdk.Command.
func (c CreateCommand[D, T]) HTTPRequest() (*sdk.HTTPRequest, error) {
	if err := validateValue(c.draft); err != nil {
		return nil, err
	}
	body, err := codec.Marshal(c.draft)
	if err != nil {
		return nil, sdk.InvalidArgument("failed to encode draft: %v", err)
	}
	return sdk.Post(c.endpoint.Path(), expandParams(c.expand), body), nil
}

// ResultType implements sdk.Command.
func (c CreateCommand[D, T]) ResultType() codec.Type[T] {
	return c.endpoint.Representation()
}

// ExpectedStatus implements sdk.StatusExpecter.
func (c CreateCommand[D, T]) ExpectedStatus() []int {
	return []int{http.StatusCreated, http.StatusOK}
}

// UpdateCommand applies actions to one version of a resource.
type UpdateCommand[T any] struct {
	endpoint sdk.Endpoint[T]
	path     string
	body     updateBody
	expand   []string
	invalid  error
}

type updateBody struct {
	Version int64          `json:"version" validate:"gte=0"`
	Actions []UpdateAction `json:"actions" validate:"required,min=1,dive"`
}

// Update applies actions to the resource with id at version. The platform
// rejects the update with 409 if the version is stale.
func Update[T any](endpoint sdk.Endpoint[T], id string, version int64, actions ...UpdateAction) UpdateCommand[T] {
	u := UpdateCommand[T]{
		endpoint: endpoint,
		path:     endpoint.Subpath("/{0}", id),
		body:     updateBody{Version: version, Actions: actions},
	}
	if id == "" {
		u.invalid = sdk.InvalidArgument("Please provide a non-empty id for %s.", endpoint.Path())
	}
	return u
}

// UpdateByKey is Update addressing the resource by its user-defined key.
func UpdateByKey[T any](endpoint sdk.Endpoint[T], key string, version int64, actions ...UpdateAction) UpdateCommand[T] {
	u := UpdateCommand[T]{
		endpoint: endpoint,
		path:     endpoint.Subpath("/key={0}", key),
		body:     updateBody{Version: version, Actions: actions},
	}
	if key == "" {
		u.invalid = sdk.InvalidArgument("Please provide a non-empty key for %s.", endpoint.Path())
	}
	return u
}

// UpdateOf updates resource, taking id and version from it.
func UpdateOf[T model.Versioned](endpoint sdk.Endpoint[T], resource T, actions ...UpdateAction) UpdateCommand[T] {
	return Update(endpoint, resource.ResourceID(), resource.ResourceVersion(), actions...)
}

// Plus returns a copy with more actions appended.
func (u UpdateCommand[T]) Plus(actions ...UpdateAction) UpdateCommand[T] {
	u.body.Actions = appendCopy(u.body.Actions, actions...)
	return u
}

// WithExpansionPaths returns a copy that expands paths in the response.
func (u UpdateCommand[T]) WithExpansionPaths(paths ...string) UpdateCommand[T] {
	u.expand = appendCopy(u.expand, nonEmpty(paths)...)
	return u
}

// Actions returns the actions the command applies.
func (u UpdateCommand[T]) Actions() []UpdateAction {
	return appendCopy[UpdateAction](nil, u.body.Actions...)
}

// HTTPRequest implements sdk.Command.
func (u UpdateCommand[T]) HTTPRequest() (*sdk.HTTPRequest, error) {
	if u.invalid != nil {
		return nil, u.invalid
	}
	if err := validateValue(u.body); err != nil {
		return nil, err
	}
	for i, a := range u.body.Actions {
		if a.Action == "" {
			return nil, sdk.InvalidArgument("action %d has no name", i)
		}
	}
	body, err := codec.Marshal(u.body)
	if err != nil {
		return nil, sdk.InvalidArgument("failed to encode update: %v", err)
	}
	return sdk.Post(u.path, expandParams(u.expand), body), nil
}

// ResultType implements sdk.Command.
func (u UpdateCommand[T]) ResultType() codec.Type[T] {
	return u.endpoint.Representation()
}

// DeleteCommand deletes one version of a resource and decodes the deleted
// representation.
type DeleteCommand[T any] struct {
	endpoint    sdk.Endpoint[T]
	path        string
	version     int64
	dataErasure bool
	invalid     error
}

// Delete deletes the resource with id at version.
func Delete[T any](endpoint sdk.Endpoint[T], id string, version int64) DeleteCommand[T] {
	d := DeleteCommand[T]{endpoint: endpoint, path: endpoint.Subpath("/{0}", id), version: version}
	if id == "" {
		d.invalid = sdk.InvalidArgument("Please provide a non-empty id for %s.", endpoint.Path())
	}
	return d
}

// DeleteAt deletes the resource at a custom subpath of endpoint.
func DeleteAt[T any](endpoint sdk.Endpoint[T], version int64, pattern string, args ...string) DeleteCommand[T] {
	return DeleteCommand[T]{endpoint: endpoint, path: endpoint.Subpath(pattern, args...), version: version}
}

// WithDataErasure asks the platform to erase personal data with the
// resource.
func (d DeleteCommand[T]) WithDataErasure(erase bool) DeleteCommand[T] {
	d.dataErasure = erase
	return d
}

// HTTPRequest implements sdk.Command.
func (d DeleteCommand[T]) HTTPRequest() (*sdk.HTTPRequest, error) {
	if d.invalid != nil {
		return nil, d.invalid
	}
	if d.version < 0 {
		return nil, sdk.InvalidArgument("version must not be negative, got %d", d.version)
	}
	query := params.List{}.Add("version", strconv.FormatInt(d.version, 10))
	if d.dataErasure {
		query = query.Add("dataErasure", "true")
	}
	return sdk.Delete(d.path, query), nil
}

// ResultType implements sdk.Command.
func (d DeleteCommand[T]) ResultType() codec.Type[T] {
	return d.endpoint.Representation()
}

func expandParams(paths []string) params.List {
	var out params.List
	for _, p := range paths {
		out = out.Add("expand", p)
	}
	return out
}
