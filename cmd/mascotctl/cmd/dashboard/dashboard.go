package dashboard

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// DashboardCmd prints an overview of the platform.
var DashboardCmd = &cobra.Command{
	Use:         "dashboard",
	Short:       "Show an overview of the assistant platform",
	Args:        cobra.NoArgs,
	Annotations: router.Route("/dashboard"),
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

		pterm.DefaultSection.Println("Dashboard")
		writeOverview(os.Stdout, summarize(sites))
		return nil
	},
}

type overview struct {
	Sites         int
	MessagesToday int
	Plans         map[string]int
	OverQuota     int
}

func summarize(sites []sdk.Site) overview {
	o := overview{Sites: len(sites), Plans: map[string]int{}}
	for _, s := range sites {
		o.MessagesToday += s.UsageToday
		plan := s.Plan
		if plan == "" {
			plan = "none"
		}
		o.Plans[plan]++
		if s.DailyQuota > 0 && s.UsageToday >= s.DailyQuota {
			o.OverQuota++
		}
	}
	return o
}

func writeOverview(out io.Writer, o overview) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total sites\t%d\n", o.Sites)
	fmt.Fprintf(w, "Messages today\t%d\n", o.MessagesToday)
	fmt.Fprintf(w, "Sites at quota\t%d\n", o.OverQuota)
	for _, plan := range sortedKeys(o.Plans) {
		fmt.Fprintf(w, "Plan %s\t%d\n", plan, o.Plans[plan])
	}
	w.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
