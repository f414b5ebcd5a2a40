package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		in := bufio.NewReader(cmd.InOrStdin())
		if email == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Email: ")
			line, _ := in.ReadString('\n')
			email = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			line, _ := in.ReadString('\n')
			password = strings.TrimRight(line, "\r\n")
		}

		a := newApp(cmd.Context())
		user, err := a.session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.FullName(), user.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and forget it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd.Context())
		a.session.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		u := a.session.User()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", u.FullName(), u.Email)
		fmt.Fprintf(out, "role: %s\n", u.Role)
		if exp, ok := a.session.ExpiresAt(); ok {
			fmt.Fprintf(out, "token expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when empty)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
