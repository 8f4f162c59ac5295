package request

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/filter"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// SearchBuilder accumulates a full text search against an endpoint's
// /search resource. Every method mutates the builder and returns it for
// chaining. Filters with nothing to filter on are skipped; an invalid facet
// is remembered and reported by Build, so nothing is sent.
//
// A SearchBuilder is not safe for concurrent use. Build one per request.
//
//	search := request.NewSearch(resources.ProductProjections).
//	    Text("en", "shirt").
//	    FilterMoneyRange("variants.price", filter.AtMost(decimal.NewFromInt(50)), filter.Default).
//	    Facet("variants.attributes.color").
//	    Limit(20)
type SearchBuilder[T any] struct {
	endpoint sdk.Endpoint[T]
	params   params.List
	text     string
	textLang string
	err      error
}

// NewSearch starts a search over endpoint.
func NewSearch[T any](endpoint sdk.Endpoint[T]) *SearchBuilder[T] {
	return &SearchBuilder[T]{endpoint: endpoint}
}

// Text sets the full text query. With a language the parameter is
// text.<lang>. An empty text clears it.
func (b *SearchBuilder[T]) Text(lang, text string) *SearchBuilder[T] {
	b.textLang = lang
	b.text = text
	return b
}

// Limit sets the page size.
func (b *SearchBuilder[T]) Limit(limit int64) *SearchBuilder[T] {
	if limit < 0 {
		b.fail(sdk.InvalidArgument("limit must not be negative, got %d", limit))
		return b
	}
	b.params = b.params.Add("limit", strconv.FormatInt(limit, 10))
	return b
}

// Offset sets the number of results to skip.
func (b *SearchBuilder[T]) Offset(offset int64) *SearchBuilder[T] {
	if offset < 0 {
		b.fail(sdk.InvalidArgument("offset must not be negative, got %d", offset))
		return b
	}
	b.params = b.params.Add("offset", strconv.FormatInt(offset, 10))
	return b
}

// Expand adds reference paths to expand.
func (b *SearchBuilder[T]) Expand(paths ...string) *SearchBuilder[T] {
	for _, p := range nonEmpty(paths) {
		b.params = b.params.Add("expand", p)
	}
	return b
}

// Sort adds sort keys.
func (b *SearchBuilder[T]) Sort(sorts ...Sort) *SearchBuilder[T] {
	for _, s := range sorts {
		b.params = b.params.Add("sort", s.String())
	}
	return b
}

// Staged searches the staged rather than the current projection.
func (b *SearchBuilder[T]) Staged(staged bool) *SearchBuilder[T] {
	b.params = b.params.Add("staged", strconv.FormatBool(staged))
	return b
}

// Filter matches an exact string value.
func (b *SearchBuilder[T]) Filter(path, value string, t filter.Type) *SearchBuilder[T] {
	return b.add(filter.Value(path, value, t))
}

// FilterNumber matches an exact number. A nil value is ignored.
func (b *SearchBuilder[T]) FilterNumber(path string, value *float64, t filter.Type) *SearchBuilder[T] {
	return b.add(filter.Number(path, value, t))
}

// FilterMoney matches an exact amount. A nil amount is ignored.
func (b *SearchBuilder[T]) FilterMoney(path string, amount *decimal.Decimal, t filter.Type) *SearchBuilder[T] {
	return b.add(filter.Money(path, amount, t))
}

// FilterAny matches any of values.
func (b *SearchBuilder[T]) FilterAny(path string, values []string, t filter.Type) *SearchBuilder[T] {
	return b.add(filter.AnyValue(path, values, t))
}

// FilterAnyNumber matches any of values.
func (b *SearchBuilder[T]) FilterAnyNumber(path string, values []float64, t filter.Type) *SearchBuilder[T] {
	return b.add(filter.AnyNumber(path, values, t))
}

// FilterRange matches a numeric interval.
func (b *SearchBuilder[T]) FilterRange(path string, r filter.Range[float64], t filter.Type) *SearchBuilder[T] {
	return b.add(filter.NumberRange(path, r, t))
}

// FilterRanges matches any of several numeric intervals.
func (b *SearchBuilder[T]) FilterRanges(path string, ranges []filter.Range[float64], t filter.Type) *SearchBuilder[T] {
	return b.add(filter.NumberRanges(path, ranges, t))
}

// FilterMoneyRange matches an amount interval.
func (b *SearchBuilder[T]) FilterMoneyRange(path string, r filter.Range[decimal.Decimal], t filter.Type) *SearchBuilder[T] {
	return b.add(filter.MoneyRange(path, r, t))
}

// FilterMoneyRanges matches any of several amount intervals.
func (b *SearchBuilder[T]) FilterMoneyRanges(path string, ranges []filter.Range[decimal.Decimal], t filter.Type) *SearchBuilder[T] {
	return b.add(filter.MoneyRanges(path, ranges, t))
}

// Facet requests a term facet.
func (b *SearchBuilder[T]) Facet(expression string) *SearchBuilder[T] {
	return b.addChecked(filter.Facet(expression))
}

// FacetRanges requests range facets.
func (b *SearchBuilder[T]) FacetRanges(expression string, ranges ...filter.Range[float64]) *SearchBuilder[T] {
	return b.addChecked(filter.FacetRanges(expression, ranges))
}

// FacetMoneyRanges requests range facets over an amount.
func (b *SearchBuilder[T]) FacetMoneyRanges(path string, ranges ...filter.Range[decimal.Decimal]) *SearchBuilder[T] {
	return b.addChecked(filter.FacetMoneyRanges(path, ranges))
}

// Param appends a raw parameter for anything the builder has no method for.
func (b *SearchBuilder[T]) Param(name, value string) *SearchBuilder[T] {
	if name == "" || value == "" {
		return b
	}
	b.params = b.params.Add(name, value)
	return b
}

// Err returns the first error recorded while building.
func (b *SearchBuilder[T]) Err() error {
	return b.err
}

// Build renders the accumulated parameters. The text parameter comes last.
func (b *SearchBuilder[T]) Build() (params.List, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := b.params.Clone()
	if b.text != "" {
		name := "text"
		if b.textLang != "" {
			name += "." + b.textLang
		}
		out = out.Add(name, b.text)
	}
	return out, nil
}

// HTTPRequest implements sdk.Command.
func (b *SearchBuilder[T]) HTTPRequest() (*sdk.HTTPRequest, error) {
	query, err := b.Build()
	if err != nil {
		return nil, err
	}
	return sdk.Get(b.endpoint.Path()+"/search", query), nil
}

// ResultType implements sdk.Command.
func (b *SearchBuilder[T]) ResultType() codec.Type[model.SearchResult[T]] {
	return model.SearchResultOf(b.endpoint.Representation())
}

func (b *SearchBuilder[T]) add(p params.Param, ok bool) *SearchBuilder[T] {
	if ok {
		b.params = b.params.Append(p)
	}
	return b
}

func (b *SearchBuilder[T]) addChecked(p params.Param, err error) *SearchBuilder[T] {
	if err != nil {
		b.fail(err)
		return b
	}
	b.params = b.params.Append(p)
	return b
}

func (b *SearchBuilder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
