// Package model holds the generic result containers returned by the
// platform and the descriptors that decode them.
package model

import (
	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// PagedQueryResult is one page of a query.
type PagedQueryResult[T any] struct {
	Offset int64 `json:"offset"`
	Limit  int64 `json:"limit"`
	Count  int64 `json:"count"`
	// Total is only filled when the query asked for it.
	Total   int64 `json:"total,omitempty"`
	Results []T   `json:"results"`
}

// Head returns the first result of the page.
func (p PagedQueryResult[T]) Head() (T, bool) {
	if len(p.Results) == 0 {
		var zero T
		return zero, false
	}
	return p.Results[0], true
}

// IsFirst reports whether this is the first page.
func (p PagedQueryResult[T]) IsFirst() bool {
	return p.Offset == 0
}

// IsLast reports whether no page follows this one. Without a total it is
// inferred from a short page.
func (p PagedQueryResult[T]) IsLast() bool {
	if p.Total > 0 {
		return p.Offset+p.Count >= p.Total
	}
	return p.Limit == 0 || p.Count < p.Limit
}

// SearchResult is one page of a full text search together with the facets
// that were requested.
type SearchResult[T any] struct {
	Offset  int64                  `json:"offset"`
	Count   int64                  `json:"count"`
	Total   int64                  `json:"total"`
	Results []T                    `json:"results"`
	Facets  map[string]FacetResult `json:"facets,omitempty"`
}

// Head returns the first result.
func (s SearchResult[T]) Head() (T, bool) {
	if len(s.Results) == 0 {
		var zero T
		return zero, false
	}
	return s.Results[0], true
}

// TermFacet returns the term facet stored under key.
func (s SearchResult[T]) TermFacet(key string) (TermFacetResult, bool) {
	f, ok := s.Facets[key].(TermFacetResult)
	return f, ok
}

// RangeFacet returns the range facet stored under key.
func (s SearchResult[T]) RangeFacet(key string) (RangeFacetResult, bool) {
	f, ok := s.Facets[key].(RangeFacetResult)
	return f, ok
}

// FilteredFacet returns the filtered facet stored under key.
func (s SearchResult[T]) FilteredFacet(key string) (FilteredFacetResult, bool) {
	f, ok := s.Facets[key].(FilteredFacetResult)
	return f, ok
}

// PagedQueryResultOf describes a page whose results are decoded by elem.
// An empty body decodes to an empty page.
//
//	page := model.PagedQueryResultOf(codec.Of[Category]())
func PagedQueryResultOf[T any](elem codec.Type[T]) codec.Type[PagedQueryResult[T]] {
	results := codec.SliceOf(elem)
	return codec.Named("PagedQueryResult["+elem.Name()+"]", func(data []byte) (PagedQueryResult[T], error) {
		var env struct {
			Offset  int64            `json:"offset"`
			Limit   int64            `json:"limit"`
			Count   int64            `json:"count"`
			Total   int64            `json:"total"`
			Results codec.RawMessage `json:"results"`
		}
		if err := codec.Unmarshal(data, &env); err != nil {
			return PagedQueryResult[T]{}, err
		}
		items, err := results.Decode(env.Results)
		if err != nil {
			return PagedQueryResult[T]{}, err
		}
		return PagedQueryResult[T]{
			Offset:  env.Offset,
			Limit:   env.Limit,
			Count:   env.Count,
			Total:   env.Total,
			Results: items,
		}, nil
	}).WithEmpty(func() PagedQueryResult[T] {
		return PagedQueryResult[T]{Results: []T{}}
	})
}

// SearchResultOf describes a search page whose results are decoded by
// elem. Facets are decoded by their "type" field.
func SearchResultOf[T any](elem codec.Type[T]) codec.Type[SearchResult[T]] {
	results := codec.SliceOf(elem)
	facets := codec.MapOf(FacetResultType)
	return codec.Named("SearchResult["+elem.Name()+"]", func(data []byte) (SearchResult[T], error) {
		var env struct {
			Offset  int64            `json:"offset"`
			Count   int64            `json:"count"`
			Total   int64            `json:"total"`
			Results codec.RawMessage `json:"results"`
			Facets  codec.RawMessage `json:"facets"`
		}
		if err := codec.Unmarshal(data, &env); err != nil {
			return SearchResult[T]{}, err
		}
		items, err := results.Decode(env.Results)
		if err != nil {
			return SearchResult[T]{}, err
		}
		fs, err := facets.Decode(env.Facets)
		if err != nil {
			return SearchResult[T]{}, err
		}
		return SearchResult[T]{
			Offset:  env.Offset,
			Count:   env.Count,
			Total:   env.Total,
			Results: items,
			Facets:  fs,
		}, nil
	}).WithEmpty(func() SearchResult[T] {
		return SearchResult[T]{Results: []T{}, Facets: map[string]FacetResult{}}
	})
}
