package mockplatform

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// predicate is a compiled "where" expression evaluated against a resource
// decoded into generic JSON values.
type predicate func(doc any) bool

// compilePredicate parses the query predicate grammar:
//
//	key = "shoes"
//	name(en = "Shoes") and version > 2
//	not(parent is defined) or key in ("a", "b")
func compilePredicate(src string) (predicate, error) {
	p := &predicateParser{tokens: tokenize(src)}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("unexpected %q in predicate", p.peek())
	}
	return pred, nil
}

type predicateParser struct {
	tokens []string
	pos    int
}

func (p *predicateParser) done() bool { return p.pos >= len(p.tokens) }

func (p *predicateParser) peek() string {
	if p.done() {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *predicateParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *predicateParser) expect(tok string) error {
	if got := p.next(); got != tok {
		return fmt.Errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *predicateParser) parseOr() (predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(doc any) bool { return l(doc) || right(doc) }
	}
	return left, nil
}

func (p *predicateParser) parseAnd() (predicate, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "and") {
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(doc any) bool { return l(doc) && right(doc) }
	}
	return left, nil
}

func (p *predicateParser) parseTerm() (predicate, error) {
	tok := p.next()
	switch {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of predicate")
	case tok == "(":
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return inner, p.expect(")")
	case strings.EqualFold(tok, "not") && p.peek() == "(":
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return func(doc any) bool { return !inner(doc) }, p.expect(")")
	case !isIdent(tok):
		return nil, fmt.Errorf("expected a field name, got %q", tok)
	}

	field := tok
	if p.peek() == "(" {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return func(doc any) bool {
			return anyValue(lookup(doc, field), inner)
		}, p.expect(")")
	}
	return p.parseComparison(field)
}

func (p *predicateParser) parseComparison(field string) (predicate, error) {
	op := p.next()
	switch {
	case strings.EqualFold(op, "is"):
		negate := false
		if strings.EqualFold(p.peek(), "not") {
			p.next()
			negate = true
		}
		if err := p.expect("defined"); err != nil {
			return nil, err
		}
		return func(doc any) bool {
			v := lookup(doc, field)
			return (v != nil) != negate
		}, nil

	case strings.EqualFold(op, "in"):
		if err := p.expect("("); err != nil {
			return nil, err
		}
		var values []any
		for {
			v, err := parseLiteral(p.next())
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.peek() != "," {
				break
			}
			p.next()
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return func(doc any) bool {
			return anyValue(lookup(doc, field), func(v any) bool {
				for _, want := range values {
					if compare(v, want) == 0 {
						return true
					}
				}
				return false
			})
		}, nil

	case op == "=" || op == "!=" || op == "<" || op == "<=" || op == ">" || op == ">=":
		want, err := parseLiteral(p.next())
		if err != nil {
			return nil, err
		}
		return func(doc any) bool {
			v := lookup(doc, field)
			if op == "!=" {
				return v != nil && !anyValue(v, func(x any) bool { return compare(x, want) == 0 })
			}
			return anyValue(v, func(x any) bool { return holds(op, compare(x, want)) })
		}, nil
	}
	return nil, fmt.Errorf("unknown operator %q after %s", op, field)
}

func holds(op string, c int) bool {
	switch op {
	case "=":
		return c == 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0 && c != incomparable
	case ">=":
		return c >= 0 && c != incomparable
	}
	return false
}

const incomparable = 2

// compare orders numbers numerically and everything else as strings.
func compare(a, b any) int {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	if aok != bok {
		return incomparable
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// anyValue applies match to v, or to each element when v is an array.
func anyValue(v any, match func(any) bool) bool {
	if arr, ok := v.([]any); ok {
		for _, el := range arr {
			if match(el) {
				return true
			}
		}
		return false
	}
	if v == nil {
		return false
	}
	return match(v)
}

func lookup(doc any, field string) any {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	return m[field]
}

func parseLiteral(tok string) (any, error) {
	switch {
	case strings.HasPrefix(tok, `"`):
		return strconv.Unquote(tok)
	case tok == "true":
		return true, nil
	case tok == "false":
		return false, nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q", tok)
	}
	return f, nil
}

func isIdent(tok string) bool {
	for i, r := range tok {
		if !(unicode.IsLetter(r) || r == '_' || r == '-' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return tok != ""
}

func tokenize(src string) []string {
	var tokens []string
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '(' || c == ')' || c == ',':
			tokens = append(tokens, string(c))
			i++
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		case strings.ContainsRune("=!<>", rune(c)):
			j := i + 1
			if j < len(src) && src[j] == '=' {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \t\n(),\"=!<>", rune(src[j])) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		}
	}
	return tokens
}
