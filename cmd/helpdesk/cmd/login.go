package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = a.prompt("Username: "); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("password") {
				if password, err = a.readPassword("Password: "); err != nil {
					return err
				}
			}

			if err := a.client.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name, prompted when empty")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, prompted without echo when omitted")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}
