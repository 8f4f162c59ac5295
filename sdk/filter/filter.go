// Package filter compiles structured filter and facet expressions into the
// platform's textual search grammar.
//
// Every function is pure. Filters return (param, ok) and report ok=false
// when the input carries nothing to filter on, so callers can skip the
// parameter instead of sending an empty one:
//
//	if p, ok := filter.Value("categories.id", id, filter.Default); ok {
//	    query = query.Append(p)
//	}
//
// Facets validate their expression and return an error wrapping
// sdk.ErrInvalidArgument when it is missing.
package filter

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// Type selects which part of a search result a filter applies to.
type Type int

const (
	// Default filters both the results and the facets.
	Default Type = iota
	// ResultsOnly filters the results but leaves facet counts untouched.
	ResultsOnly
	// FacetsOnly filters the facet counts but not the results.
	FacetsOnly
)

// ParamName returns the query parameter the filter type renders into.
func (t Type) ParamName() string {
	switch t {
	case ResultsOnly:
		return "filter"
	case FacetsOnly:
		return "filter.facets"
	default:
		return "filter.query"
	}
}

func (t Type) String() string {
	return t.ParamName()
}

// centAmount is appended to money paths.
const centAmount = ".centAmount"

// Value filters on an exact string value: <path>:"<value>".
func Value(path, value string, t Type) (params.Param, bool) {
	if value == "" {
		return params.Param{}, false
	}
	return params.New(t.ParamName(), path+":"+quote(value)), true
}

// Number filters on an exact number: <path>:<value>. A nil value is a no-op.
func Number(path string, value *float64, t Type) (params.Param, bool) {
	if value == nil {
		return params.Param{}, false
	}
	return params.New(t.ParamName(), path+":"+FormatNumber(*value)), true
}

// Money filters on an exact amount, compared in minor units:
// <path>.centAmount:<cents>. A nil amount is a no-op.
func Money(path string, amount *decimal.Decimal, t Type) (params.Param, bool) {
	if amount == nil {
		return params.Param{}, false
	}
	return params.New(t.ParamName(), path+centAmount+":"+formatInt(model.MinorUnits(*amount))), true
}

// AnyValue matches any of the given strings: <path>:"a","b". Empty members
// are dropped; nothing left is a no-op.
func AnyValue(path string, values []string, t Type) (params.Param, bool) {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		quoted = append(quoted, quote(v))
	}
	if len(quoted) == 0 {
		return params.Param{}, false
	}
	return params.New(t.ParamName(), path+":"+strings.Join(quoted, ",")), true
}

// AnyNumber matches any of the given numbers: <path>:1,2.5.
func AnyNumber(path string, values []float64, t Type) (params.Param, bool) {
	if len(values) == 0 {
		return params.Param{}, false
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatNumber(v)
	}
	return params.New(t.ParamName(), path+":"+strings.Join(parts, ",")), true
}

// NumberRange filters on one interval: <path>:range (<lo> to <hi>).
func NumberRange(path string, r Range[float64], t Type) (params.Param, bool) {
	return NumberRanges(path, []Range[float64]{r}, t)
}

// NumberRanges filters on several intervals joined by commas. Empty
// ranges are dropped; nothing left is a no-op.
func NumberRanges(path string, ranges []Range[float64], t Type) (params.Param, bool) {
	joined, ok := joinRanges(ranges, FormatNumber)
	if !ok {
		return params.Param{}, false
	}
	return params.New(t.ParamName(), path+":range "+joined), true
}

// MoneyRange filters on one amount interval, both bounds in minor units:
// <path>.centAmount:range (<lo> to <hi>).
func MoneyRange(path string, r Range[decimal.Decimal], t Type) (params.Param, bool) {
	return MoneyRanges(path, []Range[decimal.Decimal]{r}, t)
}

// MoneyRanges is MoneyRange over several intervals.
func MoneyRanges(path string, ranges []Range[decimal.Decimal], t Type) (params.Param, bool) {
	cents := make([]Range[int64], len(ranges))
	for i, r := range ranges {
		cents[i] = centsRange(r)
	}
	joined, ok := joinRanges(cents, formatInt)
	if !ok {
		return params.Param{}, false
	}
	return params.New(t.ParamName(), path+centAmount+":range "+joined), true
}

// Facet requests a facet for expression: facet=<expression>.
func Facet(expression string) (params.Param, error) {
	if expression == "" {
		return params.Param{}, sdk.InvalidArgument("Please provide a non-empty facet expression.")
	}
	return params.New("facet", expression), nil
}

// FacetRanges requests range facets:
// facet.range=<expression>:range (<lo> to <hi>),...
//
// Empty ranges are dropped. A missing expression or no usable range is an
// invalid argument.
func FacetRanges(expression string, ranges []Range[float64]) (params.Param, error) {
	if expression == "" {
		return params.Param{}, sdk.InvalidArgument("Please provide a non-empty facet expression.")
	}
	joined, ok := joinRanges(ranges, FormatNumber)
	if !ok {
		return params.Param{}, sdk.InvalidArgument("Please provide at least one non-empty range for facet %q.", expression)
	}
	return params.New("facet.range", expression+":range "+joined), nil
}

// FacetMoneyRanges requests range facets over an amount, in minor units.
func FacetMoneyRanges(path string, ranges []Range[decimal.Decimal]) (params.Param, error) {
	if path == "" {
		return params.Param{}, sdk.InvalidArgument("Please provide a non-empty facet expression.")
	}
	cents := make([]Range[int64], len(ranges))
	for i, r := range ranges {
		cents[i] = centsRange(r)
	}
	joined, ok := joinRanges(cents, formatInt)
	if !ok {
		return params.Param{}, sdk.InvalidArgument("Please provide at least one non-empty range for facet %q.", path)
	}
	return params.New("facet.range", path+centAmount+":range "+joined), nil
}

// FormatNumber renders v in its shortest exact decimal form: 1, 2.5, 0.1.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// quote wraps v in double quotes as is.
func quote(v string) string {
	return `"` + v + `"`
}
