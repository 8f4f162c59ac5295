// Package resources binds a few platform resources to endpoints and update
// actions: product projections, categories, carts, custom objects and the
// project itself.
//
//	page, err := sdk.ExecuteBlocking(ctx, client,
//	    request.NewQuery(resources.Categories).WithPredicate(request.Eq("key", "shoes")))
package resources
