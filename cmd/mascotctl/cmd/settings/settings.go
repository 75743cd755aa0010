package settings

import (
	"fmt"
	"os"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SettingsCmd is the parent command for global settings
var SettingsCmd = &cobra.Command{
	Use:         "settings",
	Short:       "Manage global AI and demo settings",
	Annotations: router.Route("/settings"),
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the global settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		settings, err := c.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", router.Explain(err))
		}

		cmdutil.PrintRows(os.Stdout, cmdutil.SettingsRows(*settings))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set key=value [key=value...]",
	Short: "Change global settings",
	Long: `Changes one or more global settings. Unspecified settings keep their current values.

Keys: ai_enabled, learning_enabled, temperature (0-2), max_tokens,
system_prompt, blocked_topics, demo_days, demo_daily_quota`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		settings, err := c.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", router.Explain(err))
		}
		for key, value := range updates {
			if err := settings.SetField(key, value); err != nil {
				return err
			}
		}

		if err := c.UpdateSettings(ctx, *settings); err != nil {
			return fmt.Errorf("failed to update settings: %w", router.Explain(err))
		}

		pterm.Success.Println("Settings updated")
		cmdutil.PrintRows(os.Stdout, cmdutil.SettingsRows(*settings))
		return nil
	},
}

func init() {
	SettingsCmd.AddCommand(getCmd)
	SettingsCmd.AddCommand(setCmd)
}
