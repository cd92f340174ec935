package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ankisign/internal/anki"
	"ankisign/internal/cards"
	"ankisign/internal/clock/system"
	"ankisign/internal/config"
	idgen "ankisign/internal/id/uuid"
	"ankisign/internal/progress"
	"ankisign/internal/progress/sinks"
	"ankisign/internal/report"
	"ankisign/internal/runlock"
	"ankisign/internal/savvy"
	"ankisign/internal/status"
	"ankisign/internal/syncer"
)

// newSyncCmd creates the sync subcommand, the entry point for a full
// import run.
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import new words (and optionally sentences) into the decks",
		Long: `sync walks the word index letter by letter, skips entries the collection
already holds, and adds a recognition/recall card pair per word variant.
When sentence sync is enabled the sentence categories are walked the same
way after the words finish.`,
		RunE: runSyncCommand,
	}

	cmd.Flags().StringP("user", "u", "", "provider account name")
	cmd.Flags().StringP("pass", "p", "", "provider account password")
	cmd.Flags().String("quality", "", "video quality tier: ld, sd or hd")
	cmd.Flags().Bool("sentences", false, "also sync the sentence collection")
	cmd.Flags().String("status", "", "serve progress and metrics on this address, e.g. :9278")

	return cmd
}

// runSyncCommand wires the provider client, the store client, and the
// progress pipeline together, then hands control to the sync engine.
func runSyncCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config
	logger := appInstance.Logger

	applySyncFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// A second concurrent run would race the dedup snapshot, so hold an
	// exclusive lock for the whole run.
	lock, err := runlock.Acquire(cfg.Lock.Path)
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return fmt.Errorf("%w (lock file %s)", runlock.ErrHeld, cfg.Lock.Path)
		}
		return fmt.Errorf("acquire run lock: %w", err)
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			logger.Warn("Failed to release run lock", zap.Error(rerr))
		}
	}()

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}
	tracker := progress.NewTracker()
	fanout := progress.NewFanout(logger, sinks.NewLogSink(logger), promSink, tracker)
	defer func() {
		if cerr := fanout.Close(context.Background()); cerr != nil {
			logger.Warn("Failed to close progress sinks", zap.Error(cerr))
		}
	}()

	engine, err := buildSyncEngine(cfg, fanout, logger)
	if err != nil {
		return err
	}

	if cfg.Status.Addr != "" {
		srv := status.NewServer(cfg.Status.Addr, tracker, registry, logger)
		go func() {
			if serr := srv.Start(); serr != nil {
				logger.Error("Status server failed", zap.Error(serr))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("Status server shutdown failed", zap.Error(serr))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := engine.Run(ctx)
	if summary.RunID != "" {
		fmt.Fprint(cmd.OutOrStdout(), report.Render(summary))
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("sync: %w", runErr)
	}
	return nil
}

// buildSyncEngine assembles the fetch, build, and store stages around the
// shared progress emitter.
func buildSyncEngine(cfg config.Config, emitter progress.Emitter, logger *zap.Logger) (*syncer.Engine, error) {
	quality, err := cards.ParseQuality(cfg.Sync.Quality)
	if err != nil {
		return nil, err
	}

	fetcher, err := savvy.NewClient(savvy.Config{
		BaseURL:   cfg.Provider.BaseURL,
		User:      cfg.Provider.User,
		Pass:      cfg.Provider.Pass,
		UserAgent: cfg.Provider.UserAgent,
		Timeout:   cfg.Provider.Timeout(),
		Delay:     cfg.Provider.Delay(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize provider client: %w", err)
	}

	store, err := anki.New(cfg.Anki.URL, cfg.Anki.Timeout(), anki.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("initialize store client: %w", err)
	}

	builder := cards.NewBuilder(cfg.Provider.MediaBaseURL, quality, cfg.Decks.Words, cfg.Decks.Sentences)

	return syncer.New(fetcher, store, builder, emitter, system.New(), idgen.New(), syncer.Config{
		WordsDeck:     cfg.Decks.Words,
		SentencesDeck: cfg.Decks.Sentences,
		SyncSentences: cfg.Sync.Sentences,
	}, logger)
}

// applySyncFlags lets explicit command-line flags win over file and
// environment configuration.
func applySyncFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.Provider.User, _ = flags.GetString("user")
	}
	if flags.Changed("pass") {
		cfg.Provider.Pass, _ = flags.GetString("pass")
	}
	if flags.Changed("quality") {
		cfg.Sync.Quality, _ = flags.GetString("quality")
	}
	if flags.Changed("sentences") {
		cfg.Sync.Sentences, _ = flags.GetBool("sentences")
	}
	if flags.Changed("status") {
		cfg.Status.Addr, _ = flags.GetString("status")
	}
}
