package auth

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/spf13/cobra"
)

var shellFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the session as environment variables",
	Long: `Export the stored session as MASCOT_ADMIN_TOKEN and MASCOT_ADMIN_API so that
scripts and CI jobs can reuse it without touching the credentials file.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  # POSIX shells (bash/zsh/sh)
  eval $(mascotctl auth export)

  # Fish shell
  eval (mascotctl auth export --shell fish)

  # PowerShell
  mascotctl auth export --shell powershell | Invoke-Expression`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := globalConfig(cmd)

		store, err := cfg.ClientProvider.Store()
		if err != nil {
			return err
		}
		token, err := store.Get()
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		if token == "" {
			return router.ErrNotLoggedIn
		}

		shell := shellFormat
		if shell == "" {
			shell = detectShell(os.Getenv("SHELL"))
		}

		if isTerminal(os.Stdout) {
			fmt.Fprintln(os.Stderr, "# Run this command to configure your environment:")
			fmt.Fprintf(os.Stderr, "#   %s\n", evalHint(shell))
			fmt.Fprintln(os.Stderr, "")
		}
		return writeExport(cmd.OutOrStdout(), shell, token, cfg.ServerURL)
	},
}

func init() {
	exportCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

// writeExport prints the variable assignments for shell. The API URL is
// omitted when it is not configured.
func writeExport(w io.Writer, shell, token, serverURL string) error {
	vars := [][2]string{{config.EnvToken, token}}
	if serverURL != "" {
		vars = append(vars, [2]string{config.EnvServerURL, serverURL})
	}

	format, quote := "", quotePosix
	switch strings.ToLower(shell) {
	case "posix", "bash", "zsh", "sh":
		format = "export %s=%s\n"
	case "fish":
		format = "set -x %s %s\n"
	case "powershell", "pwsh", "ps1":
		format, quote = "$env:%s=%s\n", quotePowerShell
	default:
		return fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", shell)
	}

	for _, v := range vars {
		if _, err := fmt.Fprintf(w, format, v[0], quote(v[1])); err != nil {
			return err
		}
	}
	return nil
}

// quotePosix wraps value in double quotes, escaping characters the shell expands.
func quotePosix(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(value) + `"`
}

// quotePowerShell uses a verbatim single-quoted string.
func quotePowerShell(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// detectShell maps $SHELL onto a supported format.
func detectShell(shell string) string {
	if shell == "" {
		return "posix"
	}

	switch filepath.Base(shell) {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		return "posix"
	}
}

func evalHint(shell string) string {
	switch strings.ToLower(shell) {
	case "fish":
		return "eval (mascotctl auth export --shell fish)"
	case "powershell", "pwsh", "ps1":
		return "mascotctl auth export --shell powershell | Invoke-Expression"
	default:
		return "eval $(mascotctl auth export)"
	}
}

// isTerminal checks if the given file is a terminal (TTY)
func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
