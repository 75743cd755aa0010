package auth

import (
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for logging in and out of the admin console and inspecting the current session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(exportCmd)
}

func globalConfig(cmd *cobra.Command) *config.GlobalConfig {
	return config.MustFromContext(cmd.Context())
}
