// Package cmdutil holds helpers shared by the mascotctl command groups.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/client"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/config"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RequestTimeout bounds a single command's API calls.
const RequestTimeout = 10 * time.Second

// SDKClient returns the admin API client and a context bounded by RequestTimeout.
func SDKClient(cmd *cobra.Command) (*sdk.Client, context.Context, context.CancelFunc, error) {
	cfg := config.MustFromContext(cmd.Context())
	c, err := cfg.ClientProvider.SDKClient()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := client.EnsureTimeout(cmd.Context(), RequestTimeout)
	return c, ctx, cancel, nil
}

// ParseAssignments parses key=value arguments. Duplicate keys keep the last
// value and produce a warning.
func ParseAssignments(args []string) (map[string]string, []string, error) {
	values := map[string]string{}
	warnings := []string{}

	for _, raw := range args {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		key, val, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid assignment %q (expected key=value)", raw)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, nil, fmt.Errorf("key cannot be empty (%q)", raw)
		}

		if _, exists := values[key]; exists {
			warnings = append(warnings, fmt.Sprintf("duplicate key %q detected, last value wins", key))
		}
		values[key] = strings.TrimSpace(val)
	}

	return values, warnings, nil
}

// SettingsRows lists s as KEY/VALUE pairs in display order.
func SettingsRows(s sdk.Settings) [][2]string {
	return [][2]string{
		{"ai_enabled", strconv.FormatBool(s.AIEnabled)},
		{"learning_enabled", strconv.FormatBool(s.LearningEnabled)},
		{"temperature", strconv.FormatFloat(s.Temperature, 'f', -1, 64)},
		{"max_tokens", strconv.Itoa(s.MaxTokens)},
		{"system_prompt", orDash(s.SystemPrompt)},
		{"blocked_topics", orDash(s.BlockedTopics)},
		{"demo_days", strconv.Itoa(s.DemoDays)},
		{"demo_daily_quota", strconv.Itoa(s.DemoDailyQuota)},
	}
}

// AISettingsRows lists a site's AI configuration as KEY/VALUE pairs.
func AISettingsRows(a sdk.AISettings) [][2]string {
	return SettingsRows(sdk.Settings{
		AIEnabled:       a.AIEnabled,
		LearningEnabled: a.LearningEnabled,
		Temperature:     a.Temperature,
		MaxTokens:       a.MaxTokens,
		SystemPrompt:    a.SystemPrompt,
		BlockedTopics:   a.BlockedTopics,
	})[:6]
}

// PrintRows writes rows as a two-column table.
func PrintRows(w io.Writer, rows [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	tw.Flush()
}

// CollectAnswers merges preset answers (from --answer) with prompts for the
// remaining setup questions. In non-interactive mode only presets are used.
func CollectAnswers(presets map[string]string, nonInteractive bool) (map[string]string, error) {
	known := make(map[string]bool, len(sdk.SetupQuestions))
	for _, q := range sdk.SetupQuestions {
		known[q.Key] = true
	}
	for key := range presets {
		if !known[key] {
			return nil, fmt.Errorf("unknown setup question %q", key)
		}
	}

	answers := make(map[string]string, len(sdk.SetupQuestions))
	for k, v := range presets {
		answers[k] = v
	}
	if nonInteractive {
		if len(answers) == 0 {
			return nil, errors.New("--answer is required in non-interactive mode")
		}
		return answers, nil
	}

	for i, q := range sdk.SetupQuestions {
		if _, ok := answers[q.Key]; ok {
			continue
		}
		prompt := fmt.Sprintf("[%d/%d] %s", i+1, len(sdk.SetupQuestions), q.Label)
		val, err := pterm.DefaultInteractiveTextInput.Show(prompt)
		if err != nil {
			return nil, err
		}
		if val = strings.TrimSpace(val); val != "" {
			answers[q.Key] = val
		}
	}
	return answers, nil
}

// OpenUploads opens paths for upload. The returned function closes them.
func OpenUploads(paths []string) ([]sdk.UploadFile, func(), error) {
	if len(paths) > sdk.MaxUploadFiles {
		return nil, nil, fmt.Errorf("at most %d files may be uploaded at once, got %d", sdk.MaxUploadFiles, len(paths))
	}

	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]sdk.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open %s: %w", p, err)
		}
		files = append(files, f)
		uploads = append(uploads, sdk.UploadFile{Name: filepath.Base(p), Reader: f})
	}
	return uploads, closeAll, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
