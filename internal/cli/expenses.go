package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"orcamento/internal/dashboard"
)

func newExpensesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expenses",
		Short: "List the expenses known to the budget API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewFinanceClient(a.cfg)
			expenses, err := client.ListExpenses(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), RenderFeedback(dashboard.Failure(dashboard.MsgRowsFailed)))
				return fmt.Errorf("listing expenses: %w", err)
			}
			if len(expenses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Nenhuma despesa cadastrada."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderExpenses(dashboard.NewRows(expenses)))
			return nil
		},
	}
}
