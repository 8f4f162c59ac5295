// Package request builds the commands executed by sdk.Execute and
// sdk.ExecuteBlocking: queries, searches, gets, and the create, update and
// delete commands.
//
// Two builder disciplines are used. QueryBuilder is an immutable value:
// every With/Plus method returns a modified copy, so a base query can be
// shared and refined concurrently. SearchBuilder is a mutable accumulator
// owned by one goroutine; build one per request.
package request

import (
	"strconv"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// QueryBuilder queries an endpoint with predicates, sorting and paging.
// The zero value is not usable; start from NewQuery.
type QueryBuilder[T any] struct {
	endpoint   sdk.Endpoint[T]
	predicates []Predicate
	sort       []Sort
	expand     []string
	limit      *int64
	offset     *int64
	withTotal  *bool
}

// NewQuery returns a query over every resource of endpoint.
func NewQuery[T any](endpoint sdk.Endpoint[T]) QueryBuilder[T] {
	return QueryBuilder[T]{endpoint: endpoint}
}

// WithPredicate replaces the predicates with p. An empty p clears them.
func (q QueryBuilder[T]) WithPredicate(p Predicate) QueryBuilder[T] {
	if p == "" {
		q.predicates = nil
		return q
	}
	q.predicates = []Predicate{p}
	return q
}

// PlusPredicate adds p to the predicates. Every predicate renders as its
// own where parameter and the platform combines them with "and".
func (q QueryBuilder[T]) PlusPredicate(p Predicate) QueryBuilder[T] {
	if p == "" {
		return q
	}
	q.predicates = appendCopy(q.predicates, p)
	return q
}

// WithSort replaces the sort order.
func (q QueryBuilder[T]) WithSort(sorts ...Sort) QueryBuilder[T] {
	q.sort = appendCopy[Sort](nil, sorts...)
	return q
}

// PlusSort adds a tie breaker to the sort order.
func (q QueryBuilder[T]) PlusSort(s Sort) QueryBuilder[T] {
	q.sort = appendCopy(q.sort, s)
	return q
}

// WithLimit sets the page size.
func (q QueryBuilder[T]) WithLimit(limit int64) QueryBuilder[T] {
	q.limit = &limit
	return q
}

// WithOffset sets the number of results to skip.
func (q QueryBuilder[T]) WithOffset(offset int64) QueryBuilder[T] {
	q.offset = &offset
	return q
}

// WithExpansionPaths replaces the reference paths to expand.
func (q QueryBuilder[T]) WithExpansionPaths(paths ...string) QueryBuilder[T] {
	q.expand = appendCopy[string](nil, nonEmpty(paths)...)
	return q
}

// PlusExpansionPaths adds reference paths to expand.
func (q QueryBuilder[T]) PlusExpansionPaths(paths ...string) QueryBuilder[T] {
	q.expand = appendCopy(q.expand, nonEmpty(paths)...)
	return q
}

// WithFetchTotal controls whether the platform computes the total count.
// Leaving it unset uses the platform default.
func (q QueryBuilder[T]) WithFetchTotal(fetch bool) QueryBuilder[T] {
	q.withTotal = &fetch
	return q
}

// Endpoint returns the queried endpoint.
func (q QueryBuilder[T]) Endpoint() sdk.Endpoint[T] {
	return q.endpoint
}

// Params renders the query string in a fixed order:
// where, sort, expand, limit, offset, withTotal.
func (q QueryBuilder[T]) Params() params.List {
	var out params.List
	for _, p := range q.predicates {
		out = out.Add("where", string(p))
	}
	for _, s := range q.sort {
		out = out.Add("sort", s.String())
	}
	for _, e := range q.expand {
		out = out.Add("expand", e)
	}
	if q.limit != nil {
		out = out.Add("limit", strconv.FormatInt(*q.limit, 10))
	}
	if q.offset != nil {
		out = out.Add("offset", strconv.FormatInt(*q.offset, 10))
	}
	if q.withTotal != nil {
		out = out.Add("withTotal", strconv.FormatBool(*q.withTotal))
	}
	return out
}

// HTTPRequest implements sdk.Command.
func (q QueryBuilder[T]) HTTPRequest() (*sdk.HTTPRequest, error) {
	if q.limit != nil && *q.limit < 0 {
		return nil, sdk.InvalidArgument("limit must not be negative, got %d", *q.limit)
	}
	if q.offset != nil && *q.offset < 0 {
		return nil, sdk.InvalidArgument("offset must not be negative, got %d", *q.offset)
	}
	return sdk.Get(q.endpoint.Path(), q.Params()), nil
}

// ResultType implements sdk.Command.
func (q QueryBuilder[T]) ResultType() codec.Type[model.PagedQueryResult[T]] {
	return model.PagedQueryResultOf(q.endpoint.Representation())
}

// appendCopy appends to a fresh slice so copies of a builder never share
// backing arrays.
func appendCopy[E any](s []E, items ...E) []E {
	out := make([]E, 0, len(s)+len(items))
	out = append(out, s...)
	return append(out, items...)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
