package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist the session",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the session and remove persisted credentials",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active session",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Account username")
	loginCmd.Flags().StringP("password", "p", "", "Account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if !current.session.Login(cmd.Context(), username, password) {
		msg := current.session.Message()
		if msg == "" {
			msg = "Login failed."
		}
		return errors.New(msg)
	}

	sess := current.session.Current()
	fmt.Printf("Logged in as %s\n", sess.DisplayName)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	current.session.Logout(cmd.Context())
	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess := current.session.Current()
	if sess == nil {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("Username: %s\n", sess.Username)
	fmt.Printf("Name:     %s\n", sess.DisplayName)
	fmt.Printf("Admin:    %t\n", sess.IsAdmin)
	return nil
}
