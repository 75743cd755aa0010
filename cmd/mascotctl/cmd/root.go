package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/auth"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/conversation"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/dashboard"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/settings"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/setup"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/site"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/client"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/logging"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sessionTimeout bounds the credential check that runs before each protected command.
const sessionTimeout = 15 * time.Second

var (
	serverURL      string
	nonInteractive bool
	debug          bool

	// active is the configuration of the running invocation; release closes it.
	active *config.GlobalConfig
)

var rootCmd = &cobra.Command{
	Use:   "mascotctl",
	Short: "Mascot admin CLI",
	Long: `mascotctl is the command-line admin console for the Mascot AI assistant.
Use it to log in, manage sites and their AI configuration, review visitor
conversations and complete client onboarding.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		values, err := config.Load(config.LoadOptions{})
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flags beat every other source.
		flags := cmd.Flags()
		if flags.Changed("server") {
			values.ServerURL = serverURL
		}
		if flags.Changed("non-interactive") {
			values.NonInteractive = nonInteractive
		}
		if flags.Changed("debug") {
			values.Debug = debug
		}

		logger, err := logging.New(values.Debug)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		provider := client.NewProvider(client.Options{
			ServerURL: values.ServerURL,
			Token:     values.Token,
			RedisAddr: values.RedisAddr,
			RedisKey:  values.RedisKey,
			Dir:       values.Dir,
			Logger:    logger,
		})

		cfg := &config.GlobalConfig{
			Settings:       values,
			Logger:         logger,
			ClientProvider: provider,
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
		active = cfg

		path, ok := router.Resolve(cmd, args)
		if !ok {
			return nil
		}
		logger.Debug("resolving session", zap.String("route", path))

		session, err := provider.Session()
		if err != nil {
			return err
		}
		ctx, cancel := client.EnsureTimeout(cmd.Context(), sessionTimeout)
		defer cancel()
		return router.Enforce(ctx, session, path)
	},
}

// release closes the Redis connection and flushes the logger. It runs as a
// cobra finalizer so failing commands are cleaned up too.
func release() {
	if active == nil {
		return
	}
	if err := active.ClientProvider.Close(); err != nil {
		active.Logger.Debug("failed to close client provider", zap.Error(err))
	}
	_ = active.Logger.Sync()
	active = nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, router.Explain(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnFinalize(release)

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Admin API base URL (env: MASCOT_ADMIN_API)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (env: MASCOT_NON_INTERACTIVE=1)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (env: MASCOT_DEBUG=1)")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(dashboard.DashboardCmd)
	rootCmd.AddCommand(site.SiteCmd)
	rootCmd.AddCommand(settings.SettingsCmd)
	rootCmd.AddCommand(conversation.ConversationCmd)
	rootCmd.AddCommand(setup.SetupCmd)
}
