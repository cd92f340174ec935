package savvy

// SearchResult is one row of a letter-bucket listing. Only the uri matters:
// it carries the trailing numeric id and is the path suffix for the detail
// fetch.
type SearchResult struct {
	URI string
}

// UsageExample pairs an English phrase with its ASL gloss.
type UsageExample struct {
	English string
	ASL     string
}

// Variant is one distinct presentation of a word (regional sign, alternate
// handshape). Index is its 1-based position in the word's variant list and is
// part of the variant's identity: it lands in the tag set and the media
// filename.
type Variant struct {
	Index       int
	Description string
	Category    string
	MemoryAid   string
	VideoPath   string
	Usage       []UsageExample
}

// WordEntry is the canonical word record. ID is stable across runs and is the
// dedup key.
type WordEntry struct {
	ID            string
	Name          string
	Clarification string
	Variants      []Variant
}

// GlossaryRef points at a word used inside a sentence.
type GlossaryRef struct {
	ID   string
	Name string
}

// SentenceEntry is the canonical sentence record.
type SentenceEntry struct {
	ID        string
	English   string
	Category  string
	ASLGloss  string
	VideoPath string
	Glossary  []GlossaryRef
}
