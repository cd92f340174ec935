package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ankisign/internal/savvy"
)

// TestWordFrontierCoversAlphabet pins the fixed letter buckets.
func TestWordFrontierCoversAlphabet(t *testing.T) {
	t.Parallel()

	frontier := WordFrontier()
	require.Len(t, frontier, 26)
	require.Equal(t, "a", frontier[0])
	require.Equal(t, "z", frontier[25])
	for _, bucket := range frontier {
		require.Len(t, bucket, 1)
	}
}

// TestSentenceFrontierParsesCategories fetches the category listing once.
func TestSentenceFrontierParsesCategories(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.set("sentences", `{"categories":["food","travel"]}`)

	categories, err := SentenceFrontier(context.Background(), fetcher)
	require.NoError(t, err)
	require.Equal(t, []string{"food", "travel"}, categories)
}

// TestSentenceFrontierPropagatesFetchError leaves the phase decision to the
// caller.
func TestSentenceFrontierPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.fail("sentences", &savvy.FetchError{Path: "sentences", Status: 503})

	_, err := SentenceFrontier(context.Background(), fetcher)
	var fetchErr *savvy.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, 503, fetchErr.Status)
}

// TestSentenceFrontierRejectsMalformedListing surfaces a schema violation.
func TestSentenceFrontierRejectsMalformedListing(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.set("sentences", `{}`)

	_, err := SentenceFrontier(context.Background(), fetcher)
	var malformed *savvy.MalformedPayloadError
	require.ErrorAs(t, err, &malformed)
}
