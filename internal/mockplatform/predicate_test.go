package mockplatform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePredicate(t *testing.T) {
	doc := map[string]any{
		"key":     "shoes",
		"version": float64(3),
		"name":    map[string]any{"en": "Shoes", "de": "Schuhe"},
		"parent":  map[string]any{"typeId": "category", "id": "root"},
		"tags":    []any{"sale", "new"},
	}

	tests := []struct {
		where string
		want  bool
	}{
		{`key = "shoes"`, true},
		{`key != "shoes"`, false},
		{`key = "boots"`, false},
		{`version > 2`, true},
		{`version >= 3`, true},
		{`version < 3`, false},
		{`version <= 3`, true},
		{`name(en = "Shoes")`, true},
		{`name(de = "Shoes")`, false},
		{`parent(id = "root")`, true},
		{`parent is defined`, true},
		{`description is not defined`, true},
		{`description is defined`, false},
		{`key in ("boots", "shoes")`, true},
		{`key in ("boots")`, false},
		{`tags = "sale"`, true},
		{`tags in ("old", "new")`, true},
		{`key = "boots" or version = 3`, true},
		{`key = "shoes" and version = 4`, false},
		{`key = "boots" or key = "shoes" and version = 3`, true},
		{`(key = "boots" or key = "shoes") and version = 4`, false},
		{`not(key = "boots")`, true},
		{`not(parent is defined)`, false},
		{`version > "2"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			p, err := compilePredicate(tt.where)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p(doc))
		})
	}
}

func TestCompilePredicate_Errors(t *testing.T) {
	for _, where := range []string{
		``,
		`key =`,
		`key ~ "a"`,
		`key = "a" and`,
		`(key = "a"`,
		`key in ("a"`,
		`key is maybe`,
		`key = shoes`,
		`"key" = "a"`,
		`key = "a" key`,
	} {
		t.Run(where, func(t *testing.T) {
			_, err := compilePredicate(where)
			assert.Error(t, err)
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"name", "(", "en", "=", `"a \"b\""`, ")", "and", "version", ">=", "2"},
		tokenize(`name(en = "a \"b\"") and version>=2`))
}
