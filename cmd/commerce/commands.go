package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/filter"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

type usageError string

func (e usageError) Error() string { return string(e) }

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type commander struct {
	client *sdk.Client
	out    io.Writer
}

func (c *commander) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "project":
		return c.project(ctx)
	case "categories":
		return c.categories(ctx, args)
	case "category":
		return c.category(ctx, args)
	case "product":
		return c.product(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "object":
		return c.object(ctx, args)
	default:
		return usageError(fmt.Sprintf("unknown command %q", name))
	}
}

func (c *commander) print(v any) error {
	data, err := codec.JSON.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

func (c *commander) project(ctx context.Context) error {
	project, err := sdk.ExecuteBlocking(ctx, c.client, resources.ProjectGet{})
	if err != nil {
		return err
	}
	return c.print(project)
}

func (c *commander) categories(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var where, sorts stringList
	fs.Var(&where, "where", "predicate, repeatable")
	fs.Var(&sorts, "sort", `sort expression such as "orderHint asc", repeatable`)
	limit := fs.Int64("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	query := request.NewQuery(resources.Categories).WithLimit(*limit)
	for _, w := range where {
		query = query.PlusPredicate(request.Raw(w))
	}
	for _, s := range sorts {
		path, dir, _ := strings.Cut(s, " ")
		if strings.EqualFold(dir, "desc") {
			query = query.PlusSort(request.Desc(path))
		} else {
			query = query.PlusSort(request.Asc(path))
		}
	}

	page, err := sdk.ExecuteBlocking(ctx, c.client, query)
	if err != nil {
		return err
	}
	for _, cat := range page.Results {
		fmt.Fprintf(c.out, "%-24s %-36s %s\n", cat.Key, cat.ID, cat.Name["en"])
	}
	fmt.Fprintf(c.out, "%d of %d\n", page.Count, page.Total)
	return nil
}

func (c *commander) category(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("category takes exactly one key")
	}
	category, err := sdk.ExecuteBlocking(ctx, c.client, request.GetByKey(resources.Categories, args[0]))
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("no category with key %q", args[0])
	}
	return c.print(category)
}

func (c *commander) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("product takes exactly one key")
	}
	product, err := sdk.ExecuteBlocking(ctx, c.client, request.GetByKey(resources.ProductProjections, args[0]))
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("no product with key %q", args[0])
	}
	return c.print(product)
}

func (c *commander) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	lang := fs.String("lang", "en", "language of the search text")
	minPrice := fs.String("min", "", "lowest price, as a decimal amount")
	maxPrice := fs.String("max", "", "highest price, as a decimal amount")
	var facets stringList
	fs.Var(&facets, "facet", "facet path, repeatable")
	limit := fs.Int64("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	price, err := priceRange(*minPrice, *maxPrice)
	if err != nil {
		return usageError(err.Error())
	}

	search := request.NewSearch(resources.ProductProjections).
		Text(*lang, strings.Join(fs.Args(), " ")).
		FilterMoneyRange("variants.price", price, filter.Default).
		Limit(*limit)
	for _, f := range facets {
		search.Facet(f)
	}

	result, err := sdk.ExecuteBlocking(ctx, c.client, search)
	if err != nil {
		return err
	}
	for _, p := range result.Results {
		fmt.Fprintf(c.out, "%-24s %-12s %s\n", p.Key, p.Master.SKU, p.Name[*lang])
	}
	fmt.Fprintf(c.out, "%d of %d\n", result.Count, result.Total)
	for _, f := range facets {
		terms, ok := result.TermFacet(f)
		if !ok {
			continue
		}
		fmt.Fprintf(c.out, "\n%s\n", f)
		for _, t := range terms.Terms {
			fmt.Fprintf(c.out, "  %-20s %d\n", t.Term, t.Count)
		}
	}
	return nil
}

// priceRange parses the optional bounds of a price filter.
func priceRange(lo, hi string) (filter.Range[decimal.Decimal], error) {
	var r filter.Range[decimal.Decimal]
	if lo != "" {
		v, err := decimal.NewFromString(lo)
		if err != nil {
			return r, fmt.Errorf("invalid -min %q: %w", lo, err)
		}
		r.Lower = &v
	}
	if hi != "" {
		v, err := decimal.NewFromString(hi)
		if err != nil {
			return r, fmt.Errorf("invalid -max %q: %w", hi, err)
		}
		r.Upper = &v
	}
	return r, nil
}

var rawObjects = resources.CustomObjects(codec.Of[codec.RawMessage]())

func (c *commander) object(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("object needs a subcommand: get or put")
	}
	switch {
	case args[0] == "get" && len(args) == 3:
		obj, err := sdk.ExecuteBlocking(ctx, c.client, resources.GetCustomObject(rawObjects, args[1], args[2]))
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("no custom object %s/%s", args[1], args[2])
		}
		return c.print(obj)
	case args[0] == "put" && len(args) == 4:
		if !codec.JSON.Valid([]byte(args[3])) {
			return usageError("the object value must be valid JSON")
		}
		obj, err := sdk.ExecuteBlocking(ctx, c.client, resources.UpsertCustomObject(rawObjects, model.CustomObjectDraft[codec.RawMessage]{
			Container: args[1],
			Key:       args[2],
			Value:     codec.RawMessage(args[3]),
		}))
		if err != nil {
			return err
		}
		return c.print(obj)
	default:
		return usageError("usage: object get <container> <key> | object put <container> <key> <json>")
	}
}
