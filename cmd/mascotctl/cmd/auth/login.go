package auth

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/client"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	username      string
	password      string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the admin console",
	Long: `Authenticates with the admin API using a username and password and stores
the issued session token for later commands.

Credentials can be given with --username and --password, piped with
--password-stdin, or entered at the prompt.`,
	Annotations: router.Route("/login"),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := globalConfig(cmd)
		if cfg.ClientProvider.IsEphemeral() {
			return fmt.Errorf("%s is set; unset it to store a login", config.EnvToken)
		}

		user, pass, err := resolveCredentials(cmd, cfg.NonInteractive)
		if err != nil {
			return err
		}

		session, err := cfg.ClientProvider.Session()
		if err != nil {
			return err
		}

		ctx, cancel := client.EnsureTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		identity, err := session.LoginWithPassword(ctx, user, pass)
		if err != nil {
			return err
		}

		if identity.Role != "" {
			pterm.Success.Printf("Logged in as %s (%s)\n", identity.Username, identity.Role)
		} else {
			pterm.Success.Printf("Logged in as %s\n", identity.Username)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Admin username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Admin password (prefer --password-stdin)")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

func resolveCredentials(cmd *cobra.Command, nonInteractive bool) (string, string, error) {
	user := strings.TrimSpace(username)
	pass := password

	if passwordStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		pass = strings.TrimRight(string(data), "\r\n")
	}

	if user == "" {
		if nonInteractive {
			return "", "", errors.New("--username is required in non-interactive mode")
		}
		var err error
		if user, err = pterm.DefaultInteractiveTextInput.Show("Username"); err != nil {
			return "", "", err
		}
		user = strings.TrimSpace(user)
	}

	if pass == "" {
		if nonInteractive {
			return "", "", errors.New("--password or --password-stdin is required in non-interactive mode")
		}
		var err error
		if pass, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password"); err != nil {
			return "", "", err
		}
	}

	if user == "" || pass == "" {
		return "", "", errors.New("username and password are required")
	}
	return user, pass, nil
}
