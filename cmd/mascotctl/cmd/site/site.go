package site

import (
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/dirctx"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var siteFlag string

// SiteCmd is the parent command for site operations
var SiteCmd = &cobra.Command{
	Use:         "site",
	Short:       "Manage sites",
	Long:        `Commands for listing sites, selecting the working site and configuring its AI assistant.`,
	Annotations: router.Route("/sites"),
}

func init() {
	SiteCmd.PersistentFlags().StringVar(&siteFlag, "site", "", "Site ID (defaults to the site selected with `site use`)")

	SiteCmd.AddCommand(listCmd)
	SiteCmd.AddCommand(useCmd)
	SiteCmd.AddCommand(aiCmd)
	SiteCmd.AddCommand(setupCmd)
	SiteCmd.AddCommand(uploadCmd)
}

// targetSite resolves --site or the directory context.
func targetSite() (sdk.ID, error) {
	sc, err := dirctx.ReadSiteContext()
	if err != nil {
		pterm.Warning.Printf("Ignoring %s: %v\n", dirctx.SiteFileName, err)
	}
	return dirctx.ResolveSiteID(siteFlag, sc)
}
