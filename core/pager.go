package core

import "context"

// PageFunc fetches one page. The offset argument is empty on the first call
// and afterwards carries the token from the previous page, verbatim. An empty
// returned token means pagination is complete.
type PageFunc[T any] func(ctx context.Context, offset string) (items []T, nextOffset string, err error)

// CollectPages drives a list operation to completion: pages are fetched
// strictly sequentially, items accumulate in arrival order, and the token
// advances exactly once per successful page. The first failure aborts the run
// and returns only the error; callers must treat partial progress as total
// failure for the operation.
//
// A limit > 0 caps the accumulated items; fetching stops as soon as the cap
// is reached.
func CollectPages[T any](ctx context.Context, limit int, fetch PageFunc[T]) ([]T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var collected []T
	offset := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, next, err := fetch(ctx, offset)
		if err != nil {
			return nil, err
		}
		collected = append(collected, items...)
		if limit > 0 && len(collected) >= limit {
			return collected[:limit], nil
		}
		if next == "" {
			return collected, nil
		}
		offset = next
	}
}
