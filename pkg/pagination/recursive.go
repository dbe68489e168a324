package pagination

import (
	"context"

	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/rs/zerolog/log"
)

// PageSize is the number of items requested per page.
const PageSize = 1

// PageFunc fetches the page starting at offset.
type PageFunc[T any] func(ctx context.Context, offset, pageSize int) ([]T, error)

// RecursiveRestCall calls fetch starting at start until a page comes back
// with fewer than PageSize items, or, when maxIndex is non-nil, until the running
// offset exceeds *maxIndex. At least one page is always fetched.
//
// Cancellation of ctx is checked between pages only.
func RecursiveRestCall[T any](ctx context.Context, start int, maxIndex *int, fetch PageFunc[T]) ([]T, error) {
	index := start
	elements := make([]T, 0)

	for page := 0; ; page++ {
		if page > 0 {
			if err := ctx.Err(); err != nil {
				return nil, domainerr.Wrap(domainerr.CodeCancelled, "pagination cancelled", err)
			}
		}

		items, err := fetch(ctx, index, PageSize)
		if err != nil {
			log.Debug().
				Err(err).
				Int("page", page).
				Int("offset", index).
				Msg("Page fetch failed")
			return nil, err
		}

		elements = append(elements, items...)
		index += len(items)

		log.Debug().
			Int("page", page).
			Int("items", len(items)).
			Int("next_offset", index).
			Msg("Page fetched")

		nextPage := len(items) >= PageSize
		if !nextPage || (maxIndex != nil && index > *maxIndex) {
			break
		}
	}

	return elements, nil
}

// FetchAll is RecursiveRestCall starting at offset 0 without an upper bound.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	return RecursiveRestCall(ctx, 0, nil, fetch)
}

// Max returns a pointer to n, for use as the maxIndex argument.
func Max(n int) *int {
	return &n
}
