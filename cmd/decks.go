package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ankisign/internal/anki"
)

// newDecksCmd groups the deck management subcommands.
func newDecksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Manage the target decks",
	}
	cmd.AddCommand(newDecksDeleteCmd())
	return cmd
}

// newDecksDeleteCmd creates the destructive cleanup command. Deleting a
// deck removes every card in it, so the command refuses to run without
// explicit confirmation.
func newDecksDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete both target decks and every card in them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.Config

			if !yes {
				return errors.New("refusing to delete decks without --yes")
			}

			client, err := anki.New(cfg.Anki.URL, cfg.Anki.Timeout(), anki.WithLogger(appInstance.Logger))
			if err != nil {
				return fmt.Errorf("initialize store client: %w", err)
			}

			decks := make([]string, 0, 2)
			for _, deck := range []string{cfg.Decks.Words, cfg.Decks.Sentences} {
				if deck != "" {
					decks = append(decks, deck)
				}
			}
			if err := client.DeleteDecks(cmd.Context(), decks); err != nil {
				return fmt.Errorf("delete decks: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted decks: %v\n", decks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
