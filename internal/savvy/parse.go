package savvy

import "encoding/json"

// idString renders an id slot that may arrive as a JSON string or number.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// ParseWordSearch extracts the search result rows of a letter-bucket listing.
func ParseWordSearch(payload []byte) ([]SearchResult, error) {
	if len(payload) == 0 {
		return nil, &MalformedPayloadError{Reason: "empty payload"}
	}
	var raw struct {
		Signs *struct {
			SearchResults []struct {
				URI string `json:"uri"`
			} `json:"search_results"`
		} `json:"signs"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &MalformedPayloadError{Reason: "not a JSON object: " + err.Error()}
	}
	if raw.Signs == nil || raw.Signs.SearchResults == nil {
		return nil, &MalformedPayloadError{Reason: "missing signs.search_results"}
	}
	results := make([]SearchResult, 0, len(raw.Signs.SearchResults))
	for _, r := range raw.Signs.SearchResults {
		results = append(results, SearchResult{URI: r.URI})
	}
	return results, nil
}

// ParseWordDetail normalizes a word detail payload. The id is required;
// descriptive fields default to empty and a usage example missing either of
// its two sides is dropped whole rather than half-rendered.
func ParseWordDetail(payload []byte) (WordEntry, error) {
	if len(payload) == 0 {
		return WordEntry{}, &MalformedPayloadError{Reason: "empty payload"}
	}
	var raw struct {
		ID            json.RawMessage `json:"id"`
		Name          string          `json:"name"`
		Clarification string          `json:"clarification"`
		Variants      []struct {
			Desc  string `json:"desc"`
			Type  string `json:"type"`
			Aid   string `json:"aid"`
			Video string `json:"video"`
			Usage []struct {
				English *string `json:"english"`
				ASL     *string `json:"asl"`
			} `json:"usage"`
		} `json:"variants"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return WordEntry{}, &MalformedPayloadError{Reason: "not a JSON object: " + err.Error()}
	}

	id := idString(raw.ID)
	if id == "" {
		return WordEntry{}, &MalformedPayloadError{Reason: "missing id"}
	}

	entry := WordEntry{
		ID:            id,
		Name:          raw.Name,
		Clarification: raw.Clarification,
		Variants:      make([]Variant, 0, len(raw.Variants)),
	}
	for i, v := range raw.Variants {
		variant := Variant{
			Index:       i + 1,
			Description: v.Desc,
			Category:    v.Type,
			MemoryAid:   v.Aid,
			VideoPath:   v.Video,
			Usage:       make([]UsageExample, 0, len(v.Usage)),
		}
		for _, u := range v.Usage {
			if u.English == nil || u.ASL == nil {
				continue
			}
			variant.Usage = append(variant.Usage, UsageExample{English: *u.English, ASL: *u.ASL})
		}
		entry.Variants = append(entry.Variants, variant)
	}
	return entry, nil
}

// ParseSentenceCategories extracts the category identifiers of the sentence
// index payload.
func ParseSentenceCategories(payload []byte) ([]string, error) {
	if len(payload) == 0 {
		return nil, &MalformedPayloadError{Reason: "empty payload"}
	}
	var raw struct {
		Categories []json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &MalformedPayloadError{Reason: "not a JSON object: " + err.Error()}
	}
	if raw.Categories == nil {
		return nil, &MalformedPayloadError{Reason: "missing categories"}
	}
	categories := make([]string, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		categories = append(categories, idString(c))
	}
	return categories, nil
}

// ParseSentenceListing extracts the sentence rows of a category listing.
// The provider reuses the categories key for these rows.
func ParseSentenceListing(payload []byte) ([]SearchResult, error) {
	if len(payload) == 0 {
		return nil, &MalformedPayloadError{Reason: "empty payload"}
	}
	var raw struct {
		Categories []struct {
			URI string `json:"uri"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &MalformedPayloadError{Reason: "not a JSON object: " + err.Error()}
	}
	if raw.Categories == nil {
		return nil, &MalformedPayloadError{Reason: "missing categories"}
	}
	results := make([]SearchResult, 0, len(raw.Categories))
	for _, r := range raw.Categories {
		results = append(results, SearchResult{URI: r.URI})
	}
	return results, nil
}

// ParseSentenceDetail normalizes a sentence detail payload. The id is
// required; everything else defaults to empty.
func ParseSentenceDetail(payload []byte) (SentenceEntry, error) {
	if len(payload) == 0 {
		return SentenceEntry{}, &MalformedPayloadError{Reason: "empty payload"}
	}
	var raw struct {
		ID       json.RawMessage `json:"id"`
		English  string          `json:"english"`
		Category string          `json:"category"`
		ASL      string          `json:"asl"`
		Video    string          `json:"video"`
		Glossary []struct {
			ID   json.RawMessage `json:"id"`
			Name string          `json:"name"`
		} `json:"glossary"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return SentenceEntry{}, &MalformedPayloadError{Reason: "not a JSON object: " + err.Error()}
	}

	id := idString(raw.ID)
	if id == "" {
		return SentenceEntry{}, &MalformedPayloadError{Reason: "missing id"}
	}

	entry := SentenceEntry{
		ID:        id,
		English:   raw.English,
		Category:  raw.Category,
		ASLGloss:  raw.ASL,
		VideoPath: raw.Video,
		Glossary:  make([]GlossaryRef, 0, len(raw.Glossary)),
	}
	for _, g := range raw.Glossary {
		entry.Glossary = append(entry.Glossary, GlossaryRef{ID: idString(g.ID), Name: g.Name})
	}
	return entry, nil
}
