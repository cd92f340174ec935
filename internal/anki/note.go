package anki

// ModelBasic is the note model every card uses.
const ModelBasic = "Basic"

// Note is the addNote payload. Field names and casing are wire-significant;
// in particular duplicateScopeOptions.checkAllmodels keeps its lowercase m
// because that is the key AnkiConnect accepts.
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    Fields            `json:"fields"`
	Options   Options           `json:"options"`
	Tags      []string          `json:"tags"`
	Video     []MediaAttachment `json:"video"`
}

// Fields holds the two sides of a Basic note.
type Fields struct {
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// Options is the duplicate handling block attached to every note.
type Options struct {
	AllowDuplicate        bool                  `json:"allowDuplicate"`
	DuplicateScope        string                `json:"duplicateScope"`
	DuplicateScopeOptions DuplicateScopeOptions `json:"duplicateScopeOptions"`
}

// DuplicateScopeOptions narrows duplicate detection to one deck.
type DuplicateScopeOptions struct {
	DeckName       string `json:"deckName"`
	CheckChildren  bool   `json:"checkChildren"`
	CheckAllModels bool   `json:"checkAllmodels"`
}

// MediaAttachment asks AnkiConnect to download url itself and store it under
// filename, then reference it from the named fields.
type MediaAttachment struct {
	URL      string   `json:"url"`
	Filename string   `json:"filename"`
	Fields   []string `json:"fields"`
}

// DefaultOptions returns the duplicate handling block every note carries:
// duplicates rejected within the target deck only.
func DefaultOptions(deck string) Options {
	return Options{
		AllowDuplicate: false,
		DuplicateScope: "deck",
		DuplicateScopeOptions: DuplicateScopeOptions{
			DeckName:       deck,
			CheckChildren:  false,
			CheckAllModels: false,
		},
	}
}
