package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ankisign/internal/config"
	"ankisign/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services every subcommand needs: the resolved
// configuration and the shared logger.
type App struct {
	Config config.Config
	Logger *zap.Logger
}

// Close flushes any buffered log output.
func (a *App) Close() {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// newApp is the application factory. It's a variable so we can
// replace it with a stub factory in tests.
var newApp = func(cfgFile string) (*App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewWithJournal(cfg.Logging.Development, cfg.Logging.Journal)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return &App{Config: cfg, Logger: logger}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ankisign",
		Short: "Sync SigningSavvy words and sentences into Anki decks.",
		Long: `ankisign walks the SigningSavvy word and sentence indexes and imports a
recognition/recall card pair for every variant into Anki via AnkiConnect.
Items already tagged in the collection are skipped, so repeated runs only
pick up new content.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// This hook runs BEFORE the subcommand's RunE. It is the place
		// where the application services get built and injected.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			// Store the app instance in the context for subcommands to use.
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// This hook ensures buffered state is flushed on the way out.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	// Define persistent flags.
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ankisign.yaml)")

	// Add subcommands. They resolve the app through the command context.
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newDecksCmd())

	return cmd
}

// resolveApp retrieves the application services injected by the root
// command's PersistentPreRunE hook.
func resolveApp(ctx context.Context) (*App, error) {
	appInstance, ok := ctx.Value(appKey).(*App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ankisign: %v\n", err)
		os.Exit(1)
	}
}
