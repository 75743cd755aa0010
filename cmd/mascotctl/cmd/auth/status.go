package auth

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/client"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := globalConfig(cmd)

		store, err := cfg.ClientProvider.Store()
		if err != nil {
			return err
		}
		token, err := store.Get()
		if err != nil {
			return err
		}
		if token == "" {
			return router.ErrNotLoggedIn
		}

		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Printf("Server: %s\n", cfg.ClientProvider.ServerURL())
		if cfg.ClientProvider.IsEphemeral() {
			pterm.Info.Println("Token source: MASCOT_ADMIN_TOKEN")
		}

		if info, ok := sdk.InspectToken(token); ok {
			if info.Subject != "" {
				pterm.Info.Printf("Token subject: %s\n", info.Subject)
			}
			if info.ExpiresAt != nil {
				if info.Expired(time.Now()) {
					pterm.Warning.Printf("Token expired at: %s\n", info.ExpiresAt.Format(time.RFC1123))
				} else {
					pterm.Info.Printf("Token expires at: %s\n", info.ExpiresAt.Format(time.RFC1123))
				}
			}
		}

		session, err := cfg.ClientProvider.Session()
		if err != nil {
			return err
		}
		ctx, cancel := client.EnsureTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		// Verification clears a token the server no longer accepts.
		state := session.Initialize(ctx, "/dashboard")
		if !state.IsAuthenticated() {
			return router.ErrNotLoggedIn
		}

		pterm.DefaultSection.Println("Identity")
		printIdentity(state.Identity)
		return nil
	},
}

func printIdentity(id *sdk.Identity) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "USERNAME\t%s\n", id.Username)
	if id.Role != "" {
		fmt.Fprintf(w, "ROLE\t%s\n", id.Role)
	}

	keys := make([]string, 0, len(id.Fields))
	for k := range id.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%v\n", k, id.Fields[k])
	}
	w.Flush()
}
