package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active emergency alerts and hotlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		alerts, err := a.services.Emergency.ActiveAlerts(cmd.Context())
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts")
		}
		for _, al := range alerts {
			fmt.Fprintf(out, "[%s] %s at %s: %s\n", al.Severity, al.Type, al.Location, al.Message)
		}

		if contacts, _ := cmd.Flags().GetBool("contacts"); !contacts {
			return nil
		}
		list, err := a.services.Emergency.Contacts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "HOTLINE\tPHONE\tAGENCY")
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Phone, c.Agency)
		}
		return w.Flush()
	},
}

func init() {
	alertsCmd.Flags().Bool("contacts", false, "also list emergency hotlines")
	rootCmd.AddCommand(alertsCmd)
}
