// Package cards turns normalized content records into paired note payloads:
// a recognition card showing the text, and a recall card leading with the
// video. Rendering is deliberately dumb string assembly so that identical
// inputs always produce byte-identical fields; the dedup tags are only
// trustworthy because of that.
package cards

import (
	"fmt"
	"strings"

	"ankisign/internal/anki"
	"ankisign/internal/savvy"
)

// Quality selects the provider's video encoding tier.
type Quality string

// Video quality tiers understood by the media host.
const (
	QualityLow  Quality = "ld"
	QualityStd  Quality = "sd"
	QualityHigh Quality = "hd"
)

// ParseQuality validates a quality label.
func ParseQuality(s string) (Quality, error) {
	switch q := Quality(s); q {
	case QualityLow, QualityStd, QualityHigh:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quality %q (want ld, sd or hd)", s)
	}
}

// WordIDTag is the tag that marks every card of a word and doubles as the
// dedup key across runs.
func WordIDTag(id string) string {
	return "asl::word-id::" + id
}

// WordVariantTag marks which variant of a word a card belongs to.
func WordVariantTag(index int) string {
	return fmt.Sprintf("asl::word-variant-id::%d", index)
}

// SentenceIDTag marks every card of a sentence. Sentences carry no variant
// dimension and no dedup check consults this tag today.
func SentenceIDTag(id string) string {
	return "asl::sentence-id::" + id
}

// Builder builds note pairs for one target collection layout.
type Builder struct {
	mediaBaseURL  string
	quality       Quality
	wordsDeck     string
	sentencesDeck string
}

// NewBuilder creates a Builder.
func NewBuilder(mediaBaseURL string, quality Quality, wordsDeck, sentencesDeck string) *Builder {
	return &Builder{
		mediaBaseURL:  strings.TrimRight(mediaBaseURL, "/"),
		quality:       quality,
		wordsDeck:     wordsDeck,
		sentencesDeck: sentencesDeck,
	}
}

// BuildWordCards renders the recognition/recall pair for one word variant.
func (b *Builder) BuildWordCards(entry savvy.WordEntry, variant savvy.Variant) (anki.Note, anki.Note) {
	content := fmt.Sprintf("%s (%s) - %d", entry.Name, entry.Clarification, variant.Index)

	var usage strings.Builder
	for _, u := range variant.Usage {
		fmt.Fprintf(&usage, "English: %s<br />", u.English)
		fmt.Fprintf(&usage, "ASL: %s<br /><br />", u.ASL)
	}
	detail := fmt.Sprintf(
		"Description: %s<br /><br />Type: %s<br /><br />Usage:<br />%s",
		variant.Description, variant.Category, usage.String(),
	)

	tags := []string{WordIDTag(entry.ID), WordVariantTag(variant.Index)}
	filename := fmt.Sprintf("%s%d.mp4", entry.ID, variant.Index)
	return b.pair(b.wordsDeck, content, wrapExtra(detail, variant.MemoryAid), tags, variant.VideoPath, filename)
}

// BuildSentenceCards renders the recognition/recall pair for one sentence.
func (b *Builder) BuildSentenceCards(entry savvy.SentenceEntry) (anki.Note, anki.Note) {
	gloss := "<br />"
	for _, g := range entry.Glossary {
		gloss += fmt.Sprintf("%s: %s<br />", g.ID, g.Name)
	}
	if gloss == "<br />" {
		gloss = ""
	}
	detail := fmt.Sprintf(
		"Category: %s<br /><br />ASL: %s<br /><br />Glossary:<br />%s",
		entry.Category, entry.ASLGloss, gloss,
	)

	tags := []string{SentenceIDTag(entry.ID)}
	return b.pair(b.sentencesDeck, entry.English, wrapExtra(detail, ""), tags, entry.VideoPath, entry.ID+".mp4")
}

// wrapExtra frames the detail block the way the decks have always rendered
// it, memory aid line included even when empty.
func wrapExtra(detail, memoryAid string) string {
	return "\n" + detail + "\n<br />\nMemory aid: " + memoryAid + "\n"
}

// pair assembles both sides. The video always attaches to the side without
// the textual content: Back of the recognition card, Front of the recall
// card.
func (b *Builder) pair(deck, content, extra string, tags []string, videoPath, filename string) (anki.Note, anki.Note) {
	videoURL := fmt.Sprintf("%s/media/mp4-%s/%s", b.mediaBaseURL, b.quality, videoPath)

	recognition := anki.Note{
		DeckName:  deck,
		ModelName: anki.ModelBasic,
		Fields:    anki.Fields{Front: content, Back: extra},
		Options:   anki.DefaultOptions(deck),
		Tags:      tags,
		Video: []anki.MediaAttachment{{
			URL:      videoURL,
			Filename: filename,
			Fields:   []string{"Back"},
		}},
	}
	recall := anki.Note{
		DeckName:  deck,
		ModelName: anki.ModelBasic,
		Fields:    anki.Fields{Front: "Video: ", Back: content + "<br /><br />" + extra},
		Options:   anki.DefaultOptions(deck),
		Tags:      tags,
		Video: []anki.MediaAttachment{{
			URL:      videoURL,
			Filename: filename,
			Fields:   []string{"Front"},
		}},
	}
	return recognition, recall
}
