package request

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
)

type category struct {
	model.Resource
	Key  string                `json:"key,omitempty"`
	Name model.LocalizedString `json:"name"`
}

var categories = sdk.NewEndpoint("/categories", codec.Of[category]())

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		want string
	}{
		{"string", Eq("key", "summer"), `key = "summer"`},
		{"nested", Where("name.en", OpEq, "Shoes"), `name(en = "Shoes")`},
		{"deep", Eq("masterData.current.slug.en", "shirt"), `masterData(current(slug(en = "shirt")))`},
		{"number", Where("version", OpGt, 3), `version > 3`},
		{"float", Where("weight", OpLe, 2.5), `weight <= 2.5`},
		{"bool", Eq("published", true), `published = true`},
		{"quote", Eq("key", `a"b`), `key = "a\"b"`},
		{"in", In("key", "a", "b"), `key in ("a", "b")`},
		{"defined", IsDefined("parent"), `parent is defined`},
		{"not", Not(Eq("key", "x")), `not(key = "x")`},
		{"and", Eq("a", 1).And(Eq("b", 2)), `(a = 1) and (b = 2)`},
		{"or", Eq("a", 1).Or(Eq("b", 2), Eq("c", 3)), `(a = 1) or (b = 2) or (c = 3)`},
		{"and skips empty", Eq("a", 1).And(""), `a = 1`},
		{"raw", Raw(`id = "1"`), `id = "1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.String())
		})
	}
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "createdAt asc", Asc("createdAt").String())
	assert.Equal(t, "name.en desc", Desc("name.en").String())
}

func TestQueryRendersInFixedOrder(t *testing.T) {
	q := NewQuery(categories).
		WithFetchTotal(false).
		WithOffset(40).
		WithLimit(20).
		WithExpansionPaths("parent").
		WithSort(Asc("orderHint")).
		WithPredicate(Eq("key", "shoes"))

	req, err := q.HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/categories", req.Path)
	assert.Equal(t,
		`where=key+%3D+%22shoes%22&sort=orderHint+asc&expand=parent&limit=20&offset=40&withTotal=false`,
		req.Query.Encode())
}

func TestQueryEmptyRendersNothing(t *testing.T) {
	req, err := NewQuery(categories).HTTPRequest()
	require.NoError(t, err)
	assert.Empty(t, req.Query)
	assert.Equal(t, "/categories", req.PathAndQuery())
}

func TestQueryPlusAccumulates(t *testing.T) {
	q := NewQuery(categories).
		PlusPredicate(Eq("a", 1)).
		PlusPredicate("").
		PlusPredicate(Eq("b", 2)).
		PlusSort(Desc("createdAt")).
		PlusSort(Asc("id")).
		PlusExpansionPaths("parent", "").
		PlusExpansionPaths("ancestors[*]")

	p := q.Params()
	assert.Equal(t, []string{"a = 1", "b = 2"}, p.Get("where"))
	assert.Equal(t, []string{"createdAt desc", "id asc"}, p.Get("sort"))
	assert.Equal(t, []string{"parent", "ancestors[*]"}, p.Get("expand"))

	cleared := q.WithPredicate("")
	assert.False(t, cleared.Params().Has("where"))
}

func TestQueryIsImmutable(t *testing.T) {
	base := NewQuery(categories).PlusPredicate(Eq("a", 1))
	left := base.PlusPredicate(Eq("b", 2))
	right := base.PlusPredicate(Eq("c", 3))

	assert.Equal(t, []string{"a = 1"}, base.Params().Get("where"))
	assert.Equal(t, []string{"a = 1", "b = 2"}, left.Params().Get("where"))
	assert.Equal(t, []string{"a = 1", "c = 3"}, right.Params().Get("where"))

	limited := base.WithLimit(5)
	assert.False(t, base.Params().Has("limit"))
	assert.True(t, limited.Params().Has("limit"))
}

func TestQuerySharedAcrossGoroutines(t *testing.T) {
	base := NewQuery(categories).PlusPredicate(Eq("a", 1))

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = base.PlusPredicate(Where("n", OpEq, i)).Params().Encode()
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		want := NewQuery(categories).PlusPredicate(Eq("a", 1)).PlusPredicate(Where("n", OpEq, i)).Params().Encode()
		assert.Equal(t, want, r)
	}
}

func TestQueryIdempotent(t *testing.T) {
	build := func() string {
		return NewQuery(categories).
			WithPredicate(In("key", "a", "b")).
			WithSort(Asc("key")).
			WithLimit(10).
			Params().Encode()
	}
	assert.Equal(t, build(), build())
}

func TestQueryRejectsNegativePaging(t *testing.T) {
	_, err := NewQuery(categories).WithLimit(-1).HTTPRequest()
	assert.True(t, sdk.IsInvalidArgument(err))

	_, err = NewQuery(categories).WithOffset(-5).HTTPRequest()
	assert.True(t, sdk.IsInvalidArgument(err))
}

func TestQueryResultType(t *testing.T) {
	rt := NewQuery(categories).ResultType()
	page, err := rt.Decode([]byte(`{"offset":0,"limit":20,"count":1,"total":1,"results":[{"id":"c1","version":2,"key":"shoes"}]}`))
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "c1", page.Results[0].ID)
	assert.Equal(t, "shoes", page.Results[0].Key)
	assert.EqualValues(t, 1, page.Total)
}
