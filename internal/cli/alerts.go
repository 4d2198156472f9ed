package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAlertsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Show the latest requests to speak with a person",
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := opts.client().Alerts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch alerts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(alerts) == 0 {
				fmt.Fprintln(out, "No escalations.")
				return nil
			}
			for _, alert := range alerts {
				fmt.Fprintf(out, "%s  %s (%s) in session %s: %q\n",
					alert.Timestamp.Local().Format("Jan 2 3:04 PM"), alert.Parent, alert.Child, alert.SessionID, alert.Message)
			}
			return nil
		},
	}
}
