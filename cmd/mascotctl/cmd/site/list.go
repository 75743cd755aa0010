package site

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/dirctx"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sites",
	Long:  `Lists all sites with their plan and today's usage against the daily quota.`,
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
		if len(sites) == 0 {
			pterm.Info.Println("No sites found")
			return nil
		}

		var current sdk.ID
		if sc, _ := dirctx.ReadSiteContext(); sc != nil {
			current = sc.SiteID
		}
		writeSites(os.Stdout, sites, current)
		return nil
	},
}

func writeSites(out io.Writer, sites []sdk.Site, current sdk.ID) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tDOMAIN\tPLAN\tUSAGE\tSTATUS")
	for _, s := range sites {
		marker := ""
		if s.ID == current {
			marker = "*"
		}
		status := s.Status
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", marker, s.ID, s.Name, s.Domain, s.Plan, usage(s), status)
	}
	w.Flush()
}

func usage(s sdk.Site) string {
	if s.DailyQuota <= 0 {
		return fmt.Sprintf("%d", s.UsageToday)
	}
	return fmt.Sprintf("%d/%d", s.UsageToday, s.DailyQuota)
}
