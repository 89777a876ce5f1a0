package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"orcamento/internal/core"
	"orcamento/internal/dashboard"
)

type addFlags struct {
	description string
	amount      string
	dueDay      string
	paid        bool
	remaining   string
}

// form fills the expense form as a user would: checking paid locks the
// remaining amount, and an empty remaining follows the amount.
func (f addFlags) form() dashboard.FormState {
	form := dashboard.NewForm().InputAmount(f.amount)
	form.Description = f.description
	form.DueDay = f.dueDay
	if f.remaining != "" {
		form.Remaining = f.remaining
	}
	if f.paid {
		form = form.TogglePaid(true)
	}
	return form
}

func newAddCommand(a *app) *cobra.Command {
	var f addFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a new expense to the budget API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(a.logger, a.cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			res := svc.controller.Submit(cmd.Context(), f.form())
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, outcomeStyle(res.Outcome).Render(res.Feedback.Message))
			if res.Outcome != core.OutcomeAccepted {
				return errReported
			}
			if res.Reload != nil && res.Reload.Loaded {
				fmt.Fprintln(out, RenderProgress(res.Reload.Summary))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.description, core.FieldDescription, "d", "", "Expense description")
	cmd.Flags().StringVarP(&f.amount, core.FieldAmount, "a", "", "Amount, e.g. 150,50")
	cmd.Flags().StringVar(&f.dueDay, "due-day", "", "Due day of the month (1-31)")
	cmd.Flags().BoolVar(&f.paid, core.FieldPaid, false, "Already paid")
	cmd.Flags().StringVar(&f.remaining, core.FieldRemaining, "", "Amount still to pay (defaults to the amount)")
	return cmd
}
