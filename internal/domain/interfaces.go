package domain

import "context"

// GalleryClient: Network operations against the portfolio API.
// Implemented by api.Client; faked in tests.
type GalleryClient interface {
	// FetchItems returns one page of items in server-defined order
	FetchItems(ctx context.Context, params QueryParams) (PageResult, error)

	// LikeItem records a like; the server de-duplicates
	LikeItem(ctx context.Context, id string) error

	// FetchCategories returns all categories
	FetchCategories(ctx context.Context) ([]Category, error)

	// FetchSeriesBySlug returns a series and its items
	FetchSeriesBySlug(ctx context.Context, slug string) (*Series, error)
}

// Store is a durable key-value store partitioned into buckets.
// Get reports (nil, false, nil) on a missing key.
type Store interface {
	Get(bucket, key string) ([]byte, bool, error)
	Put(bucket, key string, value []byte) error
	Delete(bucket, key string) error
	Close() error
}

// LikeSet is the set of item IDs liked in this browser profile
type LikeSet interface {
	Has(id string) bool
	Add(id string)
	Remove(id string)
}

// ItemMutator gives in-place access to one item of the current list.
// Implementations must not reorder or resize the list.
type ItemMutator interface {
	MutateItem(id string, fn func(item *MediaItem)) bool
}

// ItemLookup returns a copy of an item in the current list
type ItemLookup interface {
	Item(id string) (MediaItem, bool)
}
