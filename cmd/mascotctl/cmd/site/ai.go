package site

import (
	"fmt"
	"os"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Inspect or change a site's AI configuration",
}

var aiGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the AI configuration of a site",
	Long:  `Shows the AI configuration of a site. Values the site does not override are shown with their defaults.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := targetSite()
		if err != nil {
			return err
		}

		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		settings, err := c.GetSiteAI(ctx, siteID)
		if err != nil {
			return fmt.Errorf("failed to get AI settings for site %s: %w", siteID, router.Explain(err))
		}

		cmdutil.PrintRows(os.Stdout, cmdutil.AISettingsRows(*settings))
		return nil
	},
}

var aiSetCmd = &cobra.Command{
	Use:   "set key=value [key=value...]",
	Short: "Change the AI configuration of a site",
	Long: `Changes one or more AI settings of a site. Unspecified settings keep their
current values.

Keys: ai_enabled, learning_enabled, temperature (0-2), max_tokens,
system_prompt, blocked_topics`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := targetSite()
		if err != nil {
			return err
		}

		updates, warnings, err := cmdutil.ParseAssignments(args)
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			pterm.Warning.Println(warning)
		}

		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		settings, err := c.GetSiteAI(ctx, siteID)
		if err != nil {
			return fmt.Errorf("failed to get AI settings for site %s: %w", siteID, router.Explain(err))
		}
		for key, value := range updates {
			if err := settings.SetField(key, value); err != nil {
				return err
			}
		}

		if err := c.UpdateSiteAI(ctx, siteID, *settings); err != nil {
			return fmt.Errorf("failed to update AI settings for site %s: %w", siteID, router.Explain(err))
		}

		pterm.Success.Printf("Updated AI settings for site %s\n", siteID)
		cmdutil.PrintRows(os.Stdout, cmdutil.AISettingsRows(*settings))
		return nil
	},
}

func init() {
	aiCmd.AddCommand(aiGetCmd)
	aiCmd.AddCommand(aiSetCmd)
}
