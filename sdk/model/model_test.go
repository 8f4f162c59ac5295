package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

type category struct {
	ID   string          `json:"id"`
	Name LocalizedString `json:"name"`
}

var categoryType = codec.Of[category]()

func TestPagedQueryResultOf(t *testing.T) {
	body := `{"offset":0,"limit":2,"count":2,"total":5,"results":[{"id":"c1","name":{"en":"Shoes"}},{"id":"c2"}]}`

	page, err := PagedQueryResultOf(categoryType).Decode([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Shoes", page.Results[0].Name["en"])

	head, ok := page.Head()
	require.True(t, ok)
	assert.Equal(t, "c1", head.ID)
	assert.True(t, page.IsFirst())
	assert.False(t, page.IsLast())
}

func TestPagedQueryResultEmptyBody(t *testing.T) {
	page, err := PagedQueryResultOf(categoryType).Decode(nil)
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)

	_, ok := page.Head()
	assert.False(t, ok)
}

func TestPagedQueryResultName(t *testing.T) {
	assert.Equal(t, "PagedQueryResult[model.category]", PagedQueryResultOf(categoryType).Name())
}

func TestPagedQueryResultIsLastWithoutTotal(t *testing.T) {
	p := PagedQueryResult[int]{Offset: 20, Limit: 20, Count: 3}
	assert.True(t, p.IsLast())
	p.Count = 20
	assert.False(t, p.IsLast())
}

func TestSearchResultOfWithFacets(t *testing.T) {
	body := `{
		"offset": 0, "count": 1, "total": 1,
		"results": [{"id": "p1"}],
		"facets": {
			"variants.attributes.color": {"type": "terms", "dataType": "text", "missing": 0, "total": 3, "other": 0,
				"terms": [{"term": "red", "count": 2}, {"term": "blue", "count": 1}]},
			"variants.price.centAmount": {"type": "range", "ranges": [{"from": 0, "to": 1000, "count": 4, "mean": 512.5}]},
			"onSale": {"type": "filter", "count": 7}
		}
	}`

	res, err := SearchResultOf(categoryType).Decode([]byte(body))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	terms, ok := res.TermFacet("variants.attributes.color")
	require.True(t, ok)
	assert.Equal(t, int64(2), terms.Count("red"))
	assert.Equal(t, int64(0), terms.Count("green"))

	ranges, ok := res.RangeFacet("variants.price.centAmount")
	require.True(t, ok)
	require.Len(t, ranges.Ranges, 1)
	assert.Equal(t, 512.5, ranges.Ranges[0].Mean)

	filtered, ok := res.FilteredFacet("onSale")
	require.True(t, ok)
	assert.Equal(t, int64(7), filtered.Count)
}

func TestSearchResultUnknownFacet(t *testing.T) {
	_, err := SearchResultOf(categoryType).Decode([]byte(`{"results":[],"facets":{"x":{"type":"geo"}}}`))
	require.Error(t, err)
}

func TestFacetResultRoundTrip(t *testing.T) {
	in := map[string]FacetResult{
		"color": TermFacetResult{Terms: []TermStats{{Term: "red", Count: 1}}},
	}
	data, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"terms"`)

	out, err := codec.MapOf(FacetResultType).Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in["color"], out["color"])
}

func TestReferenceOf(t *testing.T) {
	typ := ReferenceOf(categoryType)

	ref, err := typ.Decode([]byte(`{"typeId":"category","id":"c1"}`))
	require.NoError(t, err)
	assert.Equal(t, "c1", ref.ID)
	assert.False(t, ref.Expanded())

	ref, err = typ.Decode([]byte(`{"typeId":"category","id":"c1","obj":{"id":"c1","name":{"de":"Schuhe"}}}`))
	require.NoError(t, err)
	require.True(t, ref.Expanded())
	assert.Equal(t, "Schuhe", ref.Obj.Name["de"])
}

func TestReferenceFilled(t *testing.T) {
	ref := NewReference[category]("category", "c1")
	filled := ref.Filled(category{ID: "c1"})
	assert.False(t, ref.Expanded())
	assert.True(t, filled.Expanded())
}

func TestCustomObjectOf(t *testing.T) {
	type settings struct {
		Theme string `json:"theme"`
	}
	typ := CustomObjectOf(codec.Of[settings]())
	assert.Equal(t, "CustomObject[model.settings]", typ.Name())

	obj, err := typ.Decode([]byte(`{"id":"o1","version":3,"container":"ui","key":"prefs","value":{"theme":"dark"}}`))
	require.NoError(t, err)
	assert.Equal(t, "dark", obj.Value.Theme)
	assert.Equal(t, int64(3), obj.ResourceVersion())
}

func TestMoney(t *testing.T) {
	m := NewMoney(decimal.RequireFromString("19.999"), "EUR")
	assert.Equal(t, int64(1999), m.CentAmount)
	assert.Equal(t, "19.99 EUR", m.String())
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("19.99")))
}

func TestMinorUnitsTruncates(t *testing.T) {
	cases := map[string]int64{
		"12.34":  1234,
		"12.349": 1234,
		"0.019":  1,
		"-1.999": -199,
		"100":    10000,
		"0":      0,
	}
	for in, want := range cases {
		assert.Equal(t, want, MinorUnits(decimal.RequireFromString(in)), in)
	}
}
