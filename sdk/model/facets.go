package model

import (
	"fmt"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// Facet result kinds as sent in the "type" field.
const (
	FacetTypeTerms  = "terms"
	FacetTypeRange  = "range"
	FacetTypeFilter = "filter"
)

// FacetResult is one entry of SearchResult.Facets. The concrete type is one
// of TermFacetResult, RangeFacetResult or FilteredFacetResult.
type FacetResult interface {
	FacetType() string
}

// TermStats counts the results carrying one term.
type TermStats struct {
	Term         string `json:"term"`
	Count        int64  `json:"count"`
	ProductCount int64  `json:"productCount,omitempty"`
}

// TermFacetResult is the answer to a plain facet expression.
type TermFacetResult struct {
	DataType string      `json:"dataType"`
	Missing  int64       `json:"missing"`
	Total    int64       `json:"total"`
	Other    int64       `json:"other"`
	Terms    []TermStats `json:"terms"`
}

// FacetType implements FacetResult.
func (TermFacetResult) FacetType() string { return FacetTypeTerms }

// Count returns the count of term, zero when it is absent.
func (f TermFacetResult) Count(term string) int64 {
	for _, t := range f.Terms {
		if t.Term == term {
			return t.Count
		}
	}
	return 0
}

// RangeStats summarizes the results that fall into one range.
type RangeStats struct {
	From       float64 `json:"from"`
	FromStr    string  `json:"fromStr"`
	To         float64 `json:"to"`
	ToStr      string  `json:"toStr"`
	Count      int64   `json:"count"`
	TotalCount int64   `json:"totalCount"`
	Total      float64 `json:"total"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
}

// RangeFacetResult is the answer to a facet.range expression.
type RangeFacetResult struct {
	DataType string       `json:"dataType,omitempty"`
	Ranges   []RangeStats `json:"ranges"`
}

// FacetType implements FacetResult.
func (RangeFacetResult) FacetType() string { return FacetTypeRange }

// FilteredFacetResult is the answer to a facet restricted to one value.
type FilteredFacetResult struct {
	Count        int64 `json:"count"`
	ProductCount int64 `json:"productCount,omitempty"`
}

// FacetType implements FacetResult.
func (FilteredFacetResult) FacetType() string { return FacetTypeFilter }

// FacetResultType decodes a facet result by its "type" field.
var FacetResultType = codec.Named("FacetResult", decodeFacetResult)

func decodeFacetResult(data []byte) (FacetResult, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := codec.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case FacetTypeTerms:
		var f TermFacetResult
		err := codec.Unmarshal(data, &f)
		return f, err
	case FacetTypeRange:
		var f RangeFacetResult
		err := codec.Unmarshal(data, &f)
		return f, err
	case FacetTypeFilter:
		var f FilteredFacetResult
		err := codec.Unmarshal(data, &f)
		return f, err
	default:
		return nil, fmt.Errorf("unknown facet result type %q", head.Type)
	}
}

// MarshalJSON writes the result together with its "type" field.
func (f TermFacetResult) MarshalJSON() ([]byte, error) {
	type plain TermFacetResult
	return codec.Marshal(struct {
		Type string `json:"type"`
		plain
	}{FacetTypeTerms, plain(f)})
}

// MarshalJSON writes the result together with its "type" field.
func (f RangeFacetResult) MarshalJSON() ([]byte, error) {
	type plain RangeFacetResult
	return codec.Marshal(struct {
		Type string `json:"type"`
		plain
	}{FacetTypeRange, plain(f)})
}

// MarshalJSON writes the result together with its "type" field.
func (f FilteredFacetResult) MarshalJSON() ([]byte, error) {
	type plain FilteredFacetResult
	return codec.Marshal(struct {
		Type string `json:"type"`
		plain
	}{FacetTypeFilter, plain(f)})
}
