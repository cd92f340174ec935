package syncer

import (
	"context"

	"ankisign/internal/savvy"
)

// WordFrontier returns the fixed crawl frontier for words: the 26 lowercase
// letter buckets of the provider's browse index. No I/O is involved.
func WordFrontier() []string {
	letters := make([]string, 0, 26)
	for c := 'a'; c <= 'z'; c++ {
		letters = append(letters, string(c))
	}
	return letters
}

// SentenceFrontier fetches the category listing once and returns the
// category identifiers. Unlike the word frontier this needs I/O, so the
// caller decides what a failure means for the sentence phase.
func SentenceFrontier(ctx context.Context, fetcher ContentFetcher) ([]string, error) {
	payload, err := fetcher.Fetch(ctx, "sentences")
	if err != nil {
		return nil, err
	}
	return savvy.ParseSentenceCategories(payload)
}
