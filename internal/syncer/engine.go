// Package syncer drives the end-to-end sync run: ensure decks, snapshot the
// dedup state, then walk the word and sentence frontiers fetching, parsing,
// and upserting cards one item at a time. Everything runs on one goroutine;
// the provider's courtesy pause between reads dominates the wall time, so
// there is nothing to gain from overlap.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"ankisign/internal/anki"
	"ankisign/internal/cards"
	"ankisign/internal/dedup"
	"ankisign/internal/progress"
	"ankisign/internal/report"
	"ankisign/internal/savvy"
)

// State names a step of the run's linear state machine. Transitions only
// move forward; the first fatal error jumps to StateAborted.
type State string

// Run states in execution order.
const (
	StateInit             State = "init"
	StateDecksEnsured     State = "decks_ensured"
	StateDedupSnapshotted State = "dedup_snapshotted"
	StateWordsSynced      State = "words_synced"
	StateSentencesSynced  State = "sentences_synced"
	StateDone             State = "done"
	StateAborted          State = "aborted"
)

// Config carries the run parameters resolved at startup.
type Config struct {
	WordsDeck     string
	SentencesDeck string
	SyncSentences bool
}

// Engine executes one sync run against the store.
type Engine struct {
	cfg     Config
	fetcher ContentFetcher
	store   Store
	builder *cards.Builder
	emitter progress.Emitter
	clock   Clock
	ids     IDGenerator
	logger  *zap.Logger
}

// New constructs an Engine. The emitter may be nil when no progress
// observers are wired up.
func New(
	fetcher ContentFetcher,
	store Store,
	builder *cards.Builder,
	emitter progress.Emitter,
	clock Clock,
	ids IDGenerator,
	cfg Config,
	logger *zap.Logger,
) (*Engine, error) {
	if fetcher == nil || store == nil || builder == nil || clock == nil || ids == nil {
		return nil, errors.New("syncer requires fetcher, store, builder, clock, and id generator")
	}
	if cfg.WordsDeck == "" {
		return nil, errors.New("words deck name is required")
	}
	if cfg.SyncSentences && cfg.SentencesDeck == "" {
		return nil, errors.New("sentences deck name is required when sentence sync is enabled")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		builder: builder,
		emitter: emitter,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}, nil
}

// run is the mutable bookkeeping of one Run invocation.
type run struct {
	id    [16]byte
	state State
	notes int64
}

// Run executes the full pipeline. Notes already added stay added when a run
// aborts; there is no rollback.
func (e *Engine) Run(ctx context.Context) (report.Summary, error) {
	rawID, err := e.ids.NewRawID()
	if err != nil {
		return report.Summary{}, fmt.Errorf("mint run id: %w", err)
	}

	r := &run{id: progress.UUIDToBytes(rawID), state: StateInit}
	start := e.clock.Now()
	summary := report.Summary{RunID: rawID.String(), StartedAt: start}

	e.logger.Info("sync run starting",
		zap.String("run_id", summary.RunID),
		zap.String("words_deck", e.cfg.WordsDeck),
		zap.Bool("sentences", e.cfg.SyncSentences),
	)
	e.emitRun(r, progress.StageRunStart, 0, "")

	err = e.execute(ctx, r, &summary)
	summary.Duration = e.clock.Now().Sub(start)
	summary.NotesAdded = r.notes
	if err != nil {
		e.transition(r, StateAborted)
		summary.Result = "error"
		summary.Err = err.Error()
		e.emitRun(r, progress.StageRunError, summary.Duration, err.Error())
		e.logger.Error("sync run aborted", zap.String("run_id", summary.RunID), zap.Error(err))
		return summary, err
	}

	e.transition(r, StateDone)
	summary.Result = "success"
	e.emitRun(r, progress.StageRunDone, summary.Duration, "")
	e.logger.Info("sync run finished",
		zap.String("run_id", summary.RunID),
		zap.Duration("dur", summary.Duration),
		zap.Int64("notes_added", r.notes),
	)
	return summary, nil
}

func (e *Engine) execute(ctx context.Context, r *run, summary *report.Summary) error {
	if err := e.ensureDecks(ctx, r); err != nil {
		return err
	}
	e.transition(r, StateDecksEnsured)

	index, err := e.snapshotDedup(ctx, r)
	if err != nil {
		return err
	}
	e.transition(r, StateDedupSnapshotted)

	words, err := e.syncWords(ctx, r, index)
	summary.Phases = append(summary.Phases, words)
	if err != nil {
		return err
	}
	e.transition(r, StateWordsSynced)

	if e.cfg.SyncSentences {
		sentences, err := e.syncSentences(ctx, r)
		summary.Phases = append(summary.Phases, sentences)
		if err != nil {
			return err
		}
		e.transition(r, StateSentencesSynced)
	}
	return nil
}

// ensureDecks creates the target decks, tolerating ones that already exist.
// The sentences deck is ensured whenever it is configured, enabled or not,
// so turning sentence sync on later needs no store changes.
func (e *Engine) ensureDecks(ctx context.Context, r *run) error {
	e.emitPhase(r, progress.StagePhaseStart, progress.PhaseDecks)

	existing, err := e.store.DeckNames(ctx)
	if err != nil {
		return err
	}

	decks := []string{e.cfg.WordsDeck}
	if e.cfg.SentencesDeck != "" {
		decks = append(decks, e.cfg.SentencesDeck)
	}
	for _, deck := range decks {
		err := e.createDeck(ctx, existing, deck)
		if errors.Is(err, anki.ErrDeckExists) {
			e.logger.Warn("deck already exists, leaving it untouched", zap.String("deck", deck))
			continue
		}
		if err != nil {
			return err
		}
		e.logger.Info("created deck", zap.String("deck", deck))
	}

	e.emitPhase(r, progress.StagePhaseDone, progress.PhaseDecks)
	return nil
}

// createDeck reports anki.ErrDeckExists instead of re-creating a deck the
// earlier listing already contains.
func (e *Engine) createDeck(ctx context.Context, existing []string, name string) error {
	if slices.Contains(existing, name) {
		return anki.ErrDeckExists
	}
	return e.store.CreateDeck(ctx, name)
}

func (e *Engine) snapshotDedup(ctx context.Context, r *run) (*dedup.Index, error) {
	e.emitPhase(r, progress.StagePhaseStart, progress.PhaseSnapshot)
	index, err := dedup.Snapshot(ctx, e.store)
	if err != nil {
		return nil, err
	}
	e.logger.Info("dedup snapshot captured", zap.Int("tags", index.Size()))
	e.emitPhase(r, progress.StagePhaseDone, progress.PhaseSnapshot)
	return index, nil
}

// syncWords walks the letter buckets. Fetch and parse problems cost only the
// item they hit; store errors abort the run.
func (e *Engine) syncWords(ctx context.Context, r *run, index *dedup.Index) (report.PhaseResult, error) {
	result := report.PhaseResult{Phase: string(progress.PhaseWords)}
	e.emitPhase(r, progress.StagePhaseStart, progress.PhaseWords)
	e.logger.Info("word sync starting")

	for _, letter := range WordFrontier() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		listing, err := e.wordListing(ctx, letter)
		if err != nil {
			e.failItem(r, &result, progress.PhaseWords, letter, "", err)
			continue
		}
		e.logger.Info("syncing letter", zap.String("letter", letter), zap.Int("signs", len(listing)))

		for _, row := range listing {
			if err := e.syncWord(ctx, r, &result, index, letter, row); err != nil {
				return result, err
			}
		}
	}

	e.emitPhase(r, progress.StagePhaseDone, progress.PhaseWords)
	return result, nil
}

// wordListing fetches and parses one letter bucket.
func (e *Engine) wordListing(ctx context.Context, letter string) ([]savvy.SearchResult, error) {
	payload, err := e.fetcher.Fetch(ctx, "browse/"+letter)
	if err != nil {
		return nil, err
	}
	return savvy.ParseWordSearch(payload)
}

// syncWord imports one search row: dedup check, detail fetch, then the
// recognition/recall pair for every processed variant. A non-nil return is
// fatal for the whole run.
func (e *Engine) syncWord(
	ctx context.Context,
	r *run,
	result *report.PhaseResult,
	index *dedup.Index,
	letter string,
	row savvy.SearchResult,
) error {
	id, ok := savvy.WordIDFromURI(row.URI)
	if !ok {
		result.Skipped++
		e.emitItem(r, progress.StageItemSkip, progress.PhaseWords, letter, "", progress.ReasonNoID)
		e.logger.Warn("sign uri has no trailing id, skipping", zap.String("uri", row.URI))
		return nil
	}
	if index.Contains(cards.WordIDTag(id)) {
		result.Skipped++
		e.emitItem(r, progress.StageItemSkip, progress.PhaseWords, letter, id, progress.ReasonDedup)
		e.logger.Debug("word already imported, skipping", zap.String("id", id))
		return nil
	}

	payload, err := e.fetcher.Fetch(ctx, "sign/"+row.URI)
	if err != nil {
		e.failItem(r, result, progress.PhaseWords, letter, id, err)
		return nil
	}
	entry, err := savvy.ParseWordDetail(payload)
	if err != nil {
		e.failItem(r, result, progress.PhaseWords, letter, id, err)
		return nil
	}

	// The last variant stays unprocessed on purpose; the decks imported to
	// date were built with this boundary.
	for i := 0; i+1 < len(entry.Variants); i++ {
		variant := entry.Variants[i]
		recognition, recall := e.builder.BuildWordCards(entry, variant)
		if err := e.addNote(ctx, r, recognition); err != nil {
			return err
		}
		if err := e.addNote(ctx, r, recall); err != nil {
			return err
		}
	}

	result.Synced++
	e.emitItem(r, progress.StageItemSynced, progress.PhaseWords, letter, entry.ID, "")
	return nil
}

// syncSentences walks the category frontier. No tag-snapshot dedup runs
// here, only words carry that contract; re-runs lean on the store's own
// duplicate rejection, which the client journals and tolerates.
func (e *Engine) syncSentences(ctx context.Context, r *run) (report.PhaseResult, error) {
	result := report.PhaseResult{Phase: string(progress.PhaseSentences)}
	e.emitPhase(r, progress.StagePhaseStart, progress.PhaseSentences)
	e.logger.Info("sentence sync starting")

	categories, err := SentenceFrontier(ctx, e.fetcher)
	if err != nil {
		// Without the category listing there is no frontier to walk. The
		// phase is abandoned; the words already synced stand.
		e.failItem(r, &result, progress.PhaseSentences, "", "", err)
		e.logger.Error("sentence frontier unavailable, abandoning sentence sync", zap.Error(err))
		e.emitPhase(r, progress.StagePhaseDone, progress.PhaseSentences)
		return result, nil
	}

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		listing, err := e.sentenceListing(ctx, category)
		if err != nil {
			e.failItem(r, &result, progress.PhaseSentences, category, "", err)
			continue
		}
		e.logger.Info("syncing category", zap.String("category", category), zap.Int("sentences", len(listing)))

		for _, row := range listing {
			if err := e.syncSentence(ctx, r, &result, category, row); err != nil {
				return result, err
			}
		}
	}

	e.emitPhase(r, progress.StagePhaseDone, progress.PhaseSentences)
	return result, nil
}

// sentenceListing fetches and parses one category bucket.
func (e *Engine) sentenceListing(ctx context.Context, category string) ([]savvy.SearchResult, error) {
	payload, err := e.fetcher.Fetch(ctx, "sentences/"+category)
	if err != nil {
		return nil, err
	}
	return savvy.ParseSentenceListing(payload)
}

func (e *Engine) syncSentence(
	ctx context.Context,
	r *run,
	result *report.PhaseResult,
	category string,
	row savvy.SearchResult,
) error {
	uri := savvy.SentenceURI(row.URI)
	payload, err := e.fetcher.Fetch(ctx, "sentence/"+uri)
	if err != nil {
		e.failItem(r, result, progress.PhaseSentences, category, "", err)
		return nil
	}
	entry, err := savvy.ParseSentenceDetail(payload)
	if err != nil {
		e.failItem(r, result, progress.PhaseSentences, category, "", err)
		return nil
	}

	recognition, recall := e.builder.BuildSentenceCards(entry)
	if err := e.addNote(ctx, r, recognition); err != nil {
		return err
	}
	if err := e.addNote(ctx, r, recall); err != nil {
		return err
	}

	result.Synced++
	e.emitItem(r, progress.StageItemSynced, progress.PhaseSentences, category, entry.ID, "")
	return nil
}

// addNote submits one card. Store errors are fatal; notes already added stay.
func (e *Engine) addNote(ctx context.Context, r *run, note anki.Note) error {
	if err := e.store.AddNote(ctx, note); err != nil {
		return err
	}
	r.notes++
	e.emitNote(r, note.DeckName)
	return nil
}

// failItem books a recoverable per-item failure and keeps the run going.
func (e *Engine) failItem(r *run, result *report.PhaseResult, phase progress.Phase, bucket, itemID string, err error) {
	result.Failed++
	e.emitItem(r, progress.StageItemFail, phase, bucket, itemID, failReason(err))
	e.logger.Warn("item failed, continuing",
		zap.String("phase", string(phase)),
		zap.String("bucket", bucket),
		zap.String("item_id", itemID),
		zap.Error(err),
	)
}

// failReason maps the error taxonomy onto counting labels.
func failReason(err error) progress.Reason {
	var malformed *savvy.MalformedPayloadError
	if errors.As(err, &malformed) {
		return progress.ReasonParse
	}
	return progress.ReasonFetch
}

func (e *Engine) transition(r *run, next State) {
	r.state = next
	e.logger.Debug("state transition", zap.String("state", string(next)))
}

func (e *Engine) emit(evt progress.Event) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) emitRun(r *run, stage progress.Stage, dur time.Duration, note string) {
	e.emit(progress.Event{RunID: r.id, TS: e.clock.Now(), Stage: stage, Dur: dur, Note: note})
}

func (e *Engine) emitPhase(r *run, stage progress.Stage, phase progress.Phase) {
	e.emit(progress.Event{RunID: r.id, TS: e.clock.Now(), Stage: stage, Phase: phase})
}

func (e *Engine) emitItem(
	r *run,
	stage progress.Stage,
	phase progress.Phase,
	bucket, itemID string,
	reason progress.Reason,
) {
	e.emit(progress.Event{
		RunID:  r.id,
		TS:     e.clock.Now(),
		Stage:  stage,
		Phase:  phase,
		Bucket: bucket,
		ItemID: itemID,
		Reason: reason,
	})
}

func (e *Engine) emitNote(r *run, deck string) {
	e.emit(progress.Event{RunID: r.id, TS: e.clock.Now(), Stage: progress.StageNoteAdded, Deck: deck})
}
