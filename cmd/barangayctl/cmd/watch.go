package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"barangaylink/pkg/apiclient"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream notifications and alerts until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := signedIn(ctx)
		if err != nil {
			return err
		}
		msgs, err := a.services.Notifications.Subscribe(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Watching for notifications (Ctrl+C to stop)")
		for msg := range msgs {
			fmt.Fprintln(out, describePush(msg))
		}
		if ctx.Err() == nil {
			return fmt.Errorf("connection closed")
		}
		return nil
	},
}

func describePush(msg apiclient.PushMessage) string {
	ts := msg.Timestamp.Local().Format("15:04:05")
	switch msg.Type {
	case apiclient.PushNotification:
		if n, err := msg.Notification(); err == nil {
			return fmt.Sprintf("%s  %s: %s", ts, n.Title, n.Message)
		}
	case apiclient.PushEmergencyAlert:
		if al, err := msg.Alert(); err == nil {
			return fmt.Sprintf("%s  ALERT [%s] %s at %s: %s", ts, al.Severity, al.Type, al.Location, al.Message)
		}
	case apiclient.PushAlertResolved:
		if al, err := msg.Alert(); err == nil {
			return fmt.Sprintf("%s  resolved: %s at %s", ts, al.Type, al.Location)
		}
	}
	return fmt.Sprintf("%s  %s %s", ts, msg.Type, string(msg.Data))
}
