package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"orcamento/internal/journal"
)

// ErrJournalDisabled is returned by history when no journal is configured.
var ErrJournalDisabled = errors.New("submission journal disabled: set JOURNAL_PATH")

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent expense submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := InitJournal(a.logger, a.cfg)
			if err != nil {
				return err
			}
			if j == nil {
				return ErrJournalDisabled
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", journal.DefaultLimit, "Number of entries")
	return cmd
}
