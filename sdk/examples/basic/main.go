package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

func main() {
	// Reads COMMERCE_PROJECT_KEY, COMMERCE_API_URL and the credentials
	config := sdk.ConfigFromEnv().WithTimeout(10 * time.Second)
	if config.ProjectKey == "" {
		config.WithProject("demo")
	}

	client, err := sdk.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	// Example 1: Query categories
	fmt.Println("--- Example 1: Query ---")
	query := request.NewQuery(resources.Categories).
		WithPredicate(request.IsDefined("parent")).
		WithSort(request.Asc("orderHint")).
		WithLimit(10)

	page, err := sdk.ExecuteBlocking(ctx, client, query)
	if err != nil {
		log.Fatalf("Failed to query categories: %v", err)
	}
	for _, c := range page.Results {
		fmt.Printf("✓ %s (%s)\n", c.Name["en"], c.ID)
	}

	// Example 2: Create a category, then get it by key
	fmt.Println("\n--- Example 2: Create and Get ---")
	draft := resources.CategoryDraft{
		Key:  "summer-sale",
		Name: model.LocalizedOf("en", "Summer Sale"),
		Slug: model.LocalizedOf("en", "summer-sale"),
	}
	created, err := sdk.ExecuteBlocking(ctx, client, request.Create(resources.Categories, draft))
	if err != nil {
		log.Fatalf("Failed to create category: %v", err)
	}
	fmt.Printf("✓ Created %s at version %d\n", created.ID, created.Version)

	found, err := sdk.ExecuteBlocking(ctx, client, request.GetByKey(resources.Categories, "summer-sale"))
	if err != nil {
		log.Fatalf("Failed to get category: %v", err)
	}
	if found == nil {
		log.Fatal("Category disappeared")
	}

	// Example 3: Update with actions
	fmt.Println("\n--- Example 3: Update ---")
	updated, err := sdk.ExecuteBlocking(ctx, client, request.UpdateOf(resources.Categories, *found,
		resources.ChangeNameAction(model.LocalizedOf("en", "Summer Sale 50%")),
		resources.ChangeOrderHintAction("0.5"),
	))
	if err != nil {
		log.Fatalf("Failed to update category: %v", err)
	}
	fmt.Printf("✓ Renamed to %q, now at version %d\n", updated.Name["en"], updated.Version)

	// Example 4: Full text search
	fmt.Println("\n--- Example 4: Search ---")
	search := request.NewSearch(resources.ProductProjections).
		Text("en", "shirt").
		Facet("variants.attributes.color").
		Limit(5)

	results, err := sdk.ExecuteBlocking(ctx, client, search)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	fmt.Printf("✓ %d of %d products\n", len(results.Results), results.Total)
	if colors, ok := results.TermFacet("variants.attributes.color"); ok {
		for _, term := range colors.Terms {
			fmt.Printf("  %s: %d\n", term.Term, term.Count)
		}
	}

	// Example 5: Missing resources are nil, not errors
	fmt.Println("\n--- Example 5: Not Found ---")
	missing, err := sdk.ExecuteBlocking(ctx, client, request.GetByID(resources.Categories, "does-not-exist"))
	if err != nil {
		log.Fatalf("Unexpected error: %v", err)
	}
	fmt.Printf("✓ Missing category is nil: %v\n", missing == nil)

	// Example 6: Delete
	fmt.Println("\n--- Example 6: Delete ---")
	if _, err := sdk.ExecuteBlocking(ctx, client, request.Delete(resources.Categories, updated.ID, updated.Version)); err != nil {
		log.Fatalf("Failed to delete category: %v", err)
	}
	fmt.Println("✓ Deleted")
}
