package mockplatform

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

// searchFilter is one compiled filter expression: <path>:<values> or
// <path>:range (<lo> to <hi>),...
type searchFilter struct {
	path   string
	values []any
	ranges []numRange
}

type numRange struct {
	from, to       float64
	fromStr, toStr string
}

func (r numRange) contains(v float64) bool {
	return v >= r.from && v <= r.to
}

func parseFilter(expr string) (searchFilter, error) {
	path, rest, ok := strings.Cut(expr, ":")
	if !ok || path == "" || rest == "" {
		return searchFilter{}, invalidInput("Malformed filter expression %q", expr)
	}
	f := searchFilter{path: path}

	if strings.HasPrefix(rest, "range") {
		ranges, err := parseRanges(strings.TrimSpace(strings.TrimPrefix(rest, "range")))
		if err != nil {
			return searchFilter{}, invalidInput("Malformed range in %q: %v", expr, err)
		}
		f.ranges = ranges
		return f, nil
	}

	for _, tok := range tokenize(rest) {
		if tok == "," {
			continue
		}
		v, err := parseLiteral(tok)
		if err != nil {
			return searchFilter{}, invalidInput("Malformed filter expression %q: %v", expr, err)
		}
		f.values = append(f.values, v)
	}
	if len(f.values) == 0 {
		return searchFilter{}, invalidInput("Malformed filter expression %q", expr)
	}
	return f, nil
}

// parseRanges reads "(0 to 100),(100 to *)".
func parseRanges(src string) ([]numRange, error) {
	var out []numRange
	for _, part := range strings.Split(src, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "(") || !strings.HasSuffix(part, ")") {
			return nil, fmt.Errorf("expected (<from> to <to>), got %q", part)
		}
		lo, hi, ok := strings.Cut(part[1:len(part)-1], " to ")
		if !ok {
			return nil, fmt.Errorf("expected (<from> to <to>), got %q", part)
		}
		r := numRange{from: math.Inf(-1), to: math.Inf(1)}
		if lo = strings.TrimSpace(lo); lo != "*" {
			v, err := strconv.ParseFloat(lo, 64)
			if err != nil {
				return nil, err
			}
			r.from, r.fromStr = v, lo
		}
		if hi = strings.TrimSpace(hi); hi != "*" {
			v, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return nil, err
			}
			r.to, r.toStr = v, hi
		}
		out = append(out, r)
	}
	return out, nil
}

func (f searchFilter) matches(p resources.ProductProjection) bool {
	for _, v := range productValues(p, f.path) {
		if len(f.ranges) > 0 {
			n, ok := v.(float64)
			if !ok {
				continue
			}
			for _, r := range f.ranges {
				if r.contains(n) {
					return true
				}
			}
			continue
		}
		for _, want := range f.values {
			if compare(v, want) == 0 {
				return true
			}
		}
	}
	return false
}

// productValues collects the values a search path selects across every
// variant of p.
func productValues(p resources.ProductProjection, path string) []any {
	switch path {
	case "id":
		return []any{p.ID}
	case "key":
		if p.Key == "" {
			return nil
		}
		return []any{p.Key}
	case "categories.id":
		out := make([]any, len(p.Categories))
		for i, c := range p.Categories {
			out[i] = c.ID
		}
		return out
	}

	var out []any
	for _, v := range p.AllVariants() {
		switch {
		case path == "variants.sku":
			if v.SKU != "" {
				out = append(out, v.SKU)
			}
		case path == "variants.price.centAmount":
			for _, price := range v.Prices {
				out = append(out, float64(price.Value.CentAmount))
			}
		case path == "variants.price.currencyCode":
			for _, price := range v.Prices {
				out = append(out, price.Value.CurrencyCode)
			}
		case strings.HasPrefix(path, "variants.attributes."):
			name := strings.TrimPrefix(path, "variants.attributes.")
			for _, attr := range v.Attributes {
				if attr.Name != name {
					continue
				}
				var value any
				if err := codec.Unmarshal(attr.Value, &value); err == nil {
					out = append(out, value)
				}
			}
		}
	}
	return out
}

// textMatches reports whether every word of text occurs in the product
// name or description in lang, or in any language when lang is empty.
func textMatches(p resources.ProductProjection, lang, text string) bool {
	var haystack []string
	for _, ls := range []model.LocalizedString{p.Name, p.Description} {
		for l, s := range ls {
			if lang == "" || l == lang {
				haystack = append(haystack, strings.ToLower(s))
			}
		}
	}
	all := strings.Join(haystack, " ")
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if !strings.Contains(all, word) {
			return false
		}
	}
	return true
}

// termFacet counts the products per distinct value of path.
func termFacet(products []resources.ProductProjection, path string) model.TermFacetResult {
	counts := map[string]int64{}
	result := model.TermFacetResult{DataType: "text", Terms: []model.TermStats{}}
	for _, p := range products {
		values := productValues(p, path)
		if len(values) == 0 {
			result.Missing++
			continue
		}
		result.Total++
		seen := map[string]bool{}
		for _, v := range values {
			term := fmt.Sprint(v)
			if n, ok := v.(float64); ok {
				term = strconv.FormatFloat(n, 'f', -1, 64)
				result.DataType = "number"
			}
			if !seen[term] {
				seen[term] = true
				counts[term]++
			}
		}
	}
	for term, n := range counts {
		result.Terms = append(result.Terms, model.TermStats{Term: term, Count: n, ProductCount: n})
	}
	sort.Slice(result.Terms, func(i, j int) bool {
		if result.Terms[i].Count != result.Terms[j].Count {
			return result.Terms[i].Count > result.Terms[j].Count
		}
		return result.Terms[i].Term < result.Terms[j].Term
	})
	return result
}

// rangeFacet summarizes the numeric values of f.path per range.
func rangeFacet(products []resources.ProductProjection, f searchFilter) model.RangeFacetResult {
	result := model.RangeFacetResult{DataType: "number", Ranges: make([]model.RangeStats, len(f.ranges))}
	for i, r := range f.ranges {
		stats := model.RangeStats{FromStr: r.fromStr, ToStr: r.toStr}
		if !math.IsInf(r.from, 0) {
			stats.From = r.from
		}
		if !math.IsInf(r.to, 0) {
			stats.To = r.to
		}
		for _, p := range products {
			counted := false
			for _, v := range productValues(p, f.path) {
				n, ok := v.(float64)
				if !ok || !r.contains(n) {
					continue
				}
				if stats.Count == 0 || n < stats.Min {
					stats.Min = n
				}
				if n > stats.Max {
					stats.Max = n
				}
				stats.Count++
				stats.Total += n
				if !counted {
					stats.TotalCount++
					counted = true
				}
			}
		}
		if stats.Count > 0 {
			stats.Mean = stats.Total / float64(stats.Count)
		}
		result.Ranges[i] = stats
	}
	return result
}

// filteredFacet counts the products matching f.
func filteredFacet(products []resources.ProductProjection, f searchFilter) model.FilteredFacetResult {
	var result model.FilteredFacetResult
	for _, p := range products {
		if f.matches(p) {
			result.Count++
		}
	}
	result.ProductCount = result.Count
	return result
}

// facetResult answers one facet expression.
func facetResult(products []resources.ProductProjection, expr string) (string, model.FacetResult, error) {
	if !strings.Contains(expr, ":") {
		return expr, termFacet(products, expr), nil
	}
	f, err := parseFilter(expr)
	if err != nil {
		return "", nil, err
	}
	if len(f.ranges) > 0 {
		return f.path, rangeFacet(products, f), nil
	}
	return expr, filteredFacet(products, f), nil
}

// SearchQuery is a parsed product search.
type SearchQuery struct {
	Lang, Text    string
	Filter        []string // results only
	FilterQuery   []string // results and facets
	FilterFacets  []string // facets only
	Facets        []string
	Offset, Limit int64
}

// Search runs q over products.
func Search(products []resources.ProductProjection, q SearchQuery) (model.SearchResult[resources.ProductProjection], error) {
	compile := func(exprs []string) ([]searchFilter, error) {
		out := make([]searchFilter, 0, len(exprs))
		for _, e := range exprs {
			f, err := parseFilter(e)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	}
	resultFilters, err := compile(q.Filter)
	if err != nil {
		return model.SearchResult[resources.ProductProjection]{}, err
	}
	queryFilters, err := compile(q.FilterQuery)
	if err != nil {
		return model.SearchResult[resources.ProductProjection]{}, err
	}
	facetFilters, err := compile(q.FilterFacets)
	if err != nil {
		return model.SearchResult[resources.ProductProjection]{}, err
	}

	all := func(p resources.ProductProjection, fs []searchFilter) bool {
		for _, f := range fs {
			if !f.matches(p) {
				return false
			}
		}
		return true
	}

	var hits, facetBase []resources.ProductProjection
	for _, p := range products {
		if q.Text != "" && !textMatches(p, q.Lang, q.Text) {
			continue
		}
		if !all(p, queryFilters) {
			continue
		}
		if all(p, resultFilters) {
			hits = append(hits, p)
		}
		if all(p, facetFilters) {
			facetBase = append(facetBase, p)
		}
	}

	result := model.SearchResult[resources.ProductProjection]{
		Offset:  q.Offset,
		Total:   int64(len(hits)),
		Results: []resources.ProductProjection{},
	}
	for i := q.Offset; i < int64(len(hits)) && i < q.Offset+q.Limit; i++ {
		result.Results = append(result.Results, hits[i])
	}
	result.Count = int64(len(result.Results))

	if len(q.Facets) > 0 {
		result.Facets = make(map[string]model.FacetResult, len(q.Facets))
		for _, expr := range q.Facets {
			key, facet, err := facetResult(facetBase, expr)
			if err != nil {
				return model.SearchResult[resources.ProductProjection]{}, err
			}
			result.Facets[key] = facet
		}
	}
	return result, nil
}
