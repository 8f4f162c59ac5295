package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListKeepsInsertionOrder(t *testing.T) {
	var l List
	l = l.Add("limit", "10").Add("expand", "a").Add("expand", "b").Add("offset", "0")

	assert.Equal(t, "limit=10&expand=a&expand=b&offset=0", l.Encode())
	assert.Equal(t, []string{"a", "b"}, l.Get("expand"))
}

func TestListEncodeEscapes(t *testing.T) {
	l := List{New("filter.query", `categories.id:"abc"`)}
	assert.Equal(t, "filter.query=categories.id%3A%22abc%22", l.Encode())
}

func TestListFirstAndHas(t *testing.T) {
	l := List{New("a", "1"), New("b", "2"), New("a", "3")}

	v, ok := l.First("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.True(t, l.Has("b"))
	assert.False(t, l.Has("c"))
}

func TestListCloneIsIndependent(t *testing.T) {
	base := make(List, 0, 4).Add("a", "1")
	clone := base.Clone()
	clone = clone.Add("b", "2")
	_ = base.Add("c", "3")

	assert.Equal(t, "a=1&b=2", clone.Encode())
}

func TestListWithout(t *testing.T) {
	l := List{New("a", "1"), New("b", "2"), New("a", "3")}
	assert.Equal(t, "b=2", l.Without("a").Encode())
	assert.Len(t, l, 3)
}

func TestEmptyList(t *testing.T) {
	var l List
	assert.Equal(t, "", l.Encode())
	assert.Empty(t, l.Values())
	assert.Nil(t, l.Clone())
}
