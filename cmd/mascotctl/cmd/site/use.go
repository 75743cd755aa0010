package site

import (
	"fmt"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/dirctx"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <site-id>",
	Short: "Select the site for commands run in this directory",
	Long: `Verifies that the site exists and records it in a .mascot-site file in the
current directory. Later site commands run here default to that site.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		sites, err := c.ListSites(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sites: %w", router.Explain(err))
		}
		site, ok := findSite(sites, sdk.ID(args[0]))
		if !ok {
			return fmt.Errorf("site %s not found", args[0])
		}

		now := time.Now().UTC()
		sc := &dirctx.SiteContext{
			Version:   dirctx.SiteFileVersion,
			SiteID:    site.ID,
			SiteName:  site.Name,
			Domain:    site.Domain,
			ServerURL: config.MustFromContext(cmd.Context()).ServerURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if existing, _ := dirctx.ReadSiteContext(); existing != nil {
			sc.CreatedAt = existing.CreatedAt
			if existing.SiteID != site.ID {
				pterm.Info.Printf("Replacing site context (was: %s, now: %s)\n", existing.SiteID, site.ID)
			}
		}
		if err := dirctx.WriteSiteContext(sc); err != nil {
			return err
		}

		pterm.Success.Printf("Using site %s (%s)\n", site.Name, site.Domain)
		return nil
	},
}

func findSite(sites []sdk.Site, id sdk.ID) (sdk.Site, bool) {
	for _, s := range sites {
		if s.ID == id {
			return s, true
		}
	}
	return sdk.Site{}, false
}
