// Package dedup holds the run-scoped snapshot of store state used to skip
// words that earlier runs already imported.
package dedup

import "context"

// TagLister is the one slice of the store client a snapshot needs.
type TagLister interface {
	ListTags(ctx context.Context) ([]string, error)
}

// Index is an immutable set of tags captured once per run. It is consulted,
// never refreshed: words created during the run are not added back, so the
// index guards against duplication across runs, not within one. Taking a new
// snapshot is the only way to observe store changes.
type Index struct {
	tags map[string]struct{}
}

// Snapshot captures the store's full tag listing.
func Snapshot(ctx context.Context, store TagLister) (*Index, error) {
	tags, err := store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(tags), nil
}

// NewIndex builds an Index from an already-fetched tag listing.
func NewIndex(tags []string) *Index {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return &Index{tags: set}
}

// Contains reports whether tag was present when the snapshot was taken.
func (i *Index) Contains(tag string) bool {
	_, ok := i.tags[tag]
	return ok
}

// Size returns the number of distinct tags captured.
func (i *Index) Size() int {
	return len(i.tags)
}
