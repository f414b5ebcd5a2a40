package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the barangay assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		lang, _ := cmd.Flags().GetString("lang")

		reply, err := a.services.AI.Chat(cmd.Context(), strings.Join(args, " "), lang)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, reply.Response)
		if len(reply.SuggestedActions) > 0 {
			fmt.Fprintf(out, "\nSuggested: %s\n", strings.Join(reply.SuggestedActions, ", "))
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().String("lang", "", "reply language: en or tl")
	rootCmd.AddCommand(chatCmd)
}
