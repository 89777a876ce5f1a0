package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newServices(a.logger, a.cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			view := svc.controller.Load(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), RenderSummary(view))
			if view.Failed() {
				return errReported
			}
			return nil
		},
	}
}
