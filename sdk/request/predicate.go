package request

import (
	"fmt"
	"strconv"
	"strings"
)

// Predicate is a query predicate in the platform's "where" syntax.
type Predicate string

// Operator compares a field with a value.
type Operator string

// Comparison operators understood by the platform.
const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="
)

// Raw wraps an already rendered predicate.
func Raw(p string) Predicate {
	return Predicate(p)
}

// Where compares the field at path with value. Nested paths are written
// with dots and rendered in the platform's bracket form:
//
//	Where("name.en", OpEq, "Shoes")       // name(en = "Shoes")
//	Where("version", OpGt, 3)              // version > 3
func Where(path string, op Operator, value any) Predicate {
	return nest(path, string(op)+" "+literal(value))
}

// Eq is Where with OpEq.
func Eq(path string, value any) Predicate {
	return Where(path, OpEq, value)
}

// In matches any of values: key in ("a", "b").
func In[V any](path string, values ...V) Predicate {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(v)
	}
	return nest(path, "in ("+strings.Join(parts, ", ")+")")
}

// IsDefined matches resources where the field at path is set.
func IsDefined(path string) Predicate {
	return nest(path, "is defined")
}

// And joins predicates with "and". Empty predicates are skipped.
func (p Predicate) And(others ...Predicate) Predicate {
	return join("and", append([]Predicate{p}, others...))
}

// Or joins predicates with "or". Empty predicates are skipped.
func (p Predicate) Or(others ...Predicate) Predicate {
	return join("or", append([]Predicate{p}, others...))
}

// Not negates p.
func Not(p Predicate) Predicate {
	return Predicate("not(" + string(p) + ")")
}

func (p Predicate) String() string {
	return string(p)
}

func join(op string, ps []Predicate) Predicate {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		if p == "" {
			continue
		}
		parts = append(parts, string(p))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return Predicate(parts[0])
	}
	return Predicate("(" + strings.Join(parts, ") "+op+" (") + ")")
}

// nest renders "a.b.c" + expr as a(b(c expr)).
func nest(path, expr string) Predicate {
	segments := strings.Split(path, ".")
	last := len(segments) - 1
	out := segments[last] + " " + expr
	for i := last - 1; i >= 0; i-- {
		out = segments[i] + "(" + out + ")"
	}
	return Predicate(out)
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case fmt.Stringer:
		return strconv.Quote(x.String())
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
