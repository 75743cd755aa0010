package setup

import (
	"fmt"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/client"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	answerArgs []string
	docPaths   []string
)

// SetupCmd completes client onboarding through a public setup link.
var SetupCmd = &cobra.Command{
	Use:   "setup <setup-token>",
	Short: "Complete client onboarding from a setup link",
	Long: `Resolves a public setup link and, unless the site has already been set up,
walks through the onboarding questionnaire and optionally uploads documents.

No login is needed: the setup token itself grants access.`,
	Args:        cobra.ExactArgs(1),
	Annotations: router.Route("/setup/{0}"),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		token := args[0]

		presets, warnings, err := cmdutil.ParseAssignments(answerArgs)
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			pterm.Warning.Println(warning)
		}

		c, err := cfg.ClientProvider.SDKClient()
		if err != nil {
			return err
		}
		ctx, cancel := client.EnsureTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		info, err := c.GetClientSetupInfo(ctx, token)
		if err != nil {
			cfg.Logger.Debug("setup link lookup failed", zap.Error(err))
			return fmt.Errorf("invalid or expired setup link")
		}

		pterm.DefaultSection.Printf("AI Setup for %s\n", info.Site.Domain)
		if info.Site.SetupCompleted {
			pterm.Info.Printf("Setup for %s is already complete\n", info.Site.Domain)
			return nil
		}

		answers, err := cmdutil.CollectAnswers(presets, cfg.NonInteractive)
		if err != nil {
			return err
		}
		if err := c.SaveClientSetup(ctx, token, answers); err != nil {
			return fmt.Errorf("failed to save setup: %w", err)
		}

		if len(docPaths) > 0 {
			files, closeAll, err := cmdutil.OpenUploads(docPaths)
			if err != nil {
				return err
			}
			defer closeAll()
			if err := c.UploadClientDocs(ctx, token, files); err != nil {
				return fmt.Errorf("setup saved, but uploading documents failed: %w", err)
			}
		}

		pterm.Success.Printf("Setup for %s saved\n", info.Site.Domain)
		return nil
	},
}

func init() {
	SetupCmd.Flags().StringArrayVar(&answerArgs, "answer", nil, "Setup answer as key=value (repeatable)")
	SetupCmd.Flags().StringArrayVar(&docPaths, "doc", nil, "Document to upload after saving (repeatable, max 3)")
}
