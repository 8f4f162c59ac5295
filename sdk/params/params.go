// Package params holds the ordered query parameter list that every request
// builder renders into.
package params

import (
	"net/url"
	"strings"
)

// Param is one name/value pair of a query string.
type Param struct {
	Name  string
	Value string
}

// New returns a Param.
func New(name, value string) Param {
	return Param{Name: name, Value: value}
}

// String renders the pair unescaped, as name=value.
func (p Param) String() string {
	return p.Name + "=" + p.Value
}

// List is an ordered multimap of query parameters. Insertion order is
// preserved and a name may repeat. The zero value is an empty list.
type List []Param

// Add returns the list with name=value appended.
func (l List) Add(name, value string) List {
	return append(l, Param{Name: name, Value: value})
}

// Append returns the list with ps appended.
func (l List) Append(ps ...Param) List {
	return append(l, ps...)
}

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Get returns every value recorded under name, in insertion order.
func (l List) Get(name string) []string {
	var out []string
	for _, p := range l {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}

// First returns the first value recorded under name.
func (l List) First(name string) (string, bool) {
	for _, p := range l {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether name was recorded at least once.
func (l List) Has(name string) bool {
	_, ok := l.First(name)
	return ok
}

// Without returns a copy of l with every parameter called name removed.
func (l List) Without(name string) List {
	out := make(List, 0, len(l))
	for _, p := range l {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

// Encode renders the list as a URL query string, escaping names and
// values and keeping insertion order. An empty list encodes to "".
func (l List) Encode() string {
	var b strings.Builder
	for i, p := range l {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Values converts the list into url.Values. Order across different names
// is lost; order within one name is kept.
func (l List) Values() url.Values {
	v := make(url.Values, len(l))
	for _, p := range l {
		v.Add(p.Name, p.Value)
	}
	return v
}
