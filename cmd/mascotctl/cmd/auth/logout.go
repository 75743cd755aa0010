package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := globalConfig(cmd)
		if cfg.ClientProvider.IsEphemeral() {
			pterm.Warning.Println("The session comes from MASCOT_ADMIN_TOKEN; unset it to log out of this shell.")
			return nil
		}

		// Logging out must work without a configured server.
		if session, err := cfg.ClientProvider.Session(); err == nil {
			session.Logout(false)
		} else {
			store, err := cfg.ClientProvider.Store()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
		}

		pterm.Success.Println("Logged out successfully")
		return nil
	},
}
