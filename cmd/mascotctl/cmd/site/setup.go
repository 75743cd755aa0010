package site

import (
	"fmt"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var setupAnswers []string

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Answer the onboarding questionnaire for a site",
	Long: `Walks through the onboarding questionnaire that teaches the assistant about
the business behind a site. Answers given with --answer key=value are not
asked again; in non-interactive mode only --answer values are sent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := targetSite()
		if err != nil {
			return err
		}

		presets, warnings, err := cmdutil.ParseAssignments(setupAnswers)
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			pterm.Warning.Println(warning)
		}

		answers, err := cmdutil.CollectAnswers(presets, config.MustFromContext(cmd.Context()).NonInteractive)
		if err != nil {
			return err
		}

		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		if err := c.SaveSiteSetup(ctx, siteID, answers); err != nil {
			return fmt.Errorf("failed to save setup for site %s: %w", siteID, router.Explain(err))
		}

		pterm.Success.Printf("Saved %d setup answers for site %s\n", len(answers), siteID)
		return nil
	},
}

func init() {
	setupCmd.Flags().StringArrayVar(&setupAnswers, "answer", nil, "Setup answer as key=value (repeatable)")
}
