package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/sdk"
)

func ptr[T any](v T) *T { return &v }

func TestTypeParamName(t *testing.T) {
	assert.Equal(t, "filter.query", Default.ParamName())
	assert.Equal(t, "filter", ResultsOnly.ParamName())
	assert.Equal(t, "filter.facets", FacetsOnly.ParamName())
}

func TestValue(t *testing.T) {
	p, ok := Value("cat", "red", ResultsOnly)
	require.True(t, ok)
	assert.Equal(t, "filter", p.Name)
	assert.Equal(t, `cat:"red"`, p.Value)

	_, ok = Value("cat", "", Default)
	assert.False(t, ok)
}

func TestValueWrapsVerbatim(t *testing.T) {
	for _, v := range []string{`12" pizza`, `say "hi"`, `back\slash`, "plain"} {
		p, ok := Value("name", v, Default)
		require.True(t, ok)
		assert.Equal(t, "filter.query", p.Name)
		assert.Equal(t, `name:"`+v+`"`, p.Value)
	}

	p, ok := AnyValue("color", []string{`a"b`, "", "c"}, ResultsOnly)
	require.True(t, ok)
	assert.Equal(t, `color:"a"b","c"`, p.Value)
}

func TestNumber(t *testing.T) {
	p, ok := Number("variants.attributes.size", ptr(42.0), Default)
	require.True(t, ok)
	assert.Equal(t, "variants.attributes.size:42", p.Value)

	p, ok = Number("weight", ptr(2.5), FacetsOnly)
	require.True(t, ok)
	assert.Equal(t, "filter.facets", p.Name)
	assert.Equal(t, "weight:2.5", p.Value)

	_, ok = Number("weight", nil, Default)
	assert.False(t, ok)
}

func TestMoney(t *testing.T) {
	amount := decimal.RequireFromString("12.34")
	p, ok := Money("variants.price", &amount, Default)
	require.True(t, ok)
	assert.Equal(t, "filter.query", p.Name)
	assert.Equal(t, "variants.price.centAmount:1234", p.Value)
	assert.Equal(t, "12.34", amount.String(), "input must not be modified")

	_, ok = Money("variants.price", nil, Default)
	assert.False(t, ok)
}

func TestNumberRange(t *testing.T) {
	p, ok := NumberRange("size", Between(1.0, 5.0), Default)
	require.True(t, ok)
	assert.Equal(t, "size:range (1 to 5)", p.Value)

	p, ok = NumberRange("size", AtLeast(3.0), Default)
	require.True(t, ok)
	assert.Equal(t, "size:range (3 to *)", p.Value)

	p, ok = NumberRange("size", AtMost(3.5), Default)
	require.True(t, ok)
	assert.Equal(t, "size:range (* to 3.5)", p.Value)

	_, ok = NumberRange("size", Range[float64]{}, Default)
	assert.False(t, ok)
}

func TestNumberRangesDropsEmpty(t *testing.T) {
	p, ok := NumberRanges("size", []Range[float64]{
		Between(1.0, 2.0),
		{},
		AtLeast(10.0),
	}, ResultsOnly)
	require.True(t, ok)
	assert.Equal(t, "filter", p.Name)
	assert.Equal(t, "size:range (1 to 2),(10 to *)", p.Value)

	_, ok = NumberRanges("size", []Range[float64]{{}, {}}, Default)
	assert.False(t, ok)

	_, ok = NumberRanges("size", nil, Default)
	assert.False(t, ok)
}

func TestMoneyRange(t *testing.T) {
	p, ok := MoneyRange("variants.price", Between(decimal.RequireFromString("1.5"), decimal.RequireFromString("20.999")), Default)
	require.True(t, ok)
	assert.Equal(t, "variants.price.centAmount:range (150 to 2099)", p.Value)

	p, ok = MoneyRanges("variants.price", []Range[decimal.Decimal]{{}, AtMost(decimal.NewFromInt(3))}, Default)
	require.True(t, ok)
	assert.Equal(t, "variants.price.centAmount:range (* to 300)", p.Value)

	_, ok = MoneyRange("variants.price", Range[decimal.Decimal]{}, Default)
	assert.False(t, ok)
}

func TestAnyValue(t *testing.T) {
	p, ok := AnyValue("color", []string{"red", "", "blue"}, Default)
	require.True(t, ok)
	assert.Equal(t, `color:"red","blue"`, p.Value)

	_, ok = AnyValue("color", []string{"", ""}, Default)
	assert.False(t, ok)

	_, ok = AnyValue("color", nil, Default)
	assert.False(t, ok)
}

func TestAnyNumber(t *testing.T) {
	p, ok := AnyNumber("size", []float64{1, 2.5, 10}, Default)
	require.True(t, ok)
	assert.Equal(t, "size:1,2.5,10", p.Value)

	_, ok = AnyNumber("size", []float64{}, Default)
	assert.False(t, ok)
}

func TestFacet(t *testing.T) {
	p, err := Facet("variants.attributes.color")
	require.NoError(t, err)
	assert.Equal(t, "facet", p.Name)
	assert.Equal(t, "variants.attributes.color", p.Value)

	_, err = Facet("")
	require.Error(t, err)
	assert.True(t, sdk.IsInvalidArgument(err))
}

func TestFacetRanges(t *testing.T) {
	p, err := FacetRanges("size", []Range[float64]{Between(1.0, 5.0), AtLeast(5.0)})
	require.NoError(t, err)
	assert.Equal(t, "facet.range", p.Name)
	assert.Equal(t, "size:range (1 to 5),(5 to *)", p.Value)

	_, err = FacetRanges("", []Range[float64]{Between(1.0, 5.0)})
	assert.True(t, sdk.IsInvalidArgument(err))

	_, err = FacetRanges("size", nil)
	assert.True(t, sdk.IsInvalidArgument(err))

	_, err = FacetRanges("size", []Range[float64]{{}})
	assert.True(t, sdk.IsInvalidArgument(err))
}

func TestFacetMoneyRanges(t *testing.T) {
	p, err := FacetMoneyRanges("variants.price", []Range[decimal.Decimal]{Between(decimal.NewFromInt(0), decimal.RequireFromString("9.99"))})
	require.NoError(t, err)
	assert.Equal(t, "variants.price.centAmount:range (0 to 999)", p.Value)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1", FormatNumber(1))
	assert.Equal(t, "2.5", FormatNumber(2.5))
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "-3", FormatNumber(-3))
}
