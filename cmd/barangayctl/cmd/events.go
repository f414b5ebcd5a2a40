package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Community events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}

		q := pageQuery(cmd)
		if upcoming, _ := cmd.Flags().GetBool("upcoming"); upcoming {
			q.Filters.Set("upcoming", "true")
		}
		if search, _ := cmd.Flags().GetString("search"); search != "" {
			q.Filters.Set("search", search)
		}

		page, err := a.services.Events.List(cmd.Context(), q)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTARTS\tLOCATION\tSLOTS")
		for _, e := range page.Data {
			slots := "open"
			if e.Capacity > 0 {
				slots = strconv.Itoa(e.Participants) + "/" + strconv.Itoa(e.Capacity)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				e.ID, e.Title, e.StartsAt.Local().Format("Jan 2 15:04"), e.Location, slots)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPaging(cmd, page.Pagination)
		return nil
	},
}

var eventsJoinCmd = &cobra.Command{
	Use:   "join <event-id>",
	Short: "Register for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		asVolunteer, _ := cmd.Flags().GetBool("volunteer")
		if err := a.services.Events.Register(cmd.Context(), uint(id), asVolunteer); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered for event #%d\n", id)
		return nil
	},
}

func init() {
	addPageFlags(eventsListCmd)
	eventsListCmd.Flags().Bool("upcoming", true, "only events that have not ended")
	eventsListCmd.Flags().String("search", "", "search title and description")
	eventsJoinCmd.Flags().Bool("volunteer", false, "sign up as a volunteer")

	eventsCmd.AddCommand(eventsListCmd, eventsJoinCmd)
	rootCmd.AddCommand(eventsCmd)
}
