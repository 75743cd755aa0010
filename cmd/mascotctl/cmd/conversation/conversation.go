package conversation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var domainFilter string

// ConversationCmd is the parent command for conversation review
var ConversationCmd = &cobra.Command{
	Use:         "conversation",
	Aliases:     []string{"conversations", "conv"},
	Short:       "Review visitor conversations",
	Annotations: router.Route("/conversations"),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		convos, err := c.ListConversations(ctx)
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", router.Explain(err))
		}
		convos = filterByDomain(convos, domainFilter)
		if len(convos) == 0 {
			pterm.Info.Println("No conversations found")
			return nil
		}

		writeConversations(os.Stdout, convos)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		msgs, err := c.ListMessages(ctx, sdk.ID(args[0]))
		if err != nil {
			return fmt.Errorf("failed to load conversation %s: %w", args[0], router.Explain(err))
		}
		if len(msgs) == 0 {
			pterm.Info.Println("Conversation has no messages")
			return nil
		}

		writeMessages(os.Stdout, msgs)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&domainFilter, "domain", "", "Only show conversations for this domain")

	ConversationCmd.AddCommand(listCmd)
	ConversationCmd.AddCommand(showCmd)
}

func filterByDomain(convos []sdk.Conversation, domain string) []sdk.Conversation {
	if domain == "" {
		return convos
	}
	var out []sdk.Conversation
	for _, c := range convos {
		if strings.EqualFold(c.Domain, domain) {
			out = append(out, c)
		}
	}
	return out
}

func writeConversations(out io.Writer, convos []sdk.Conversation) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tSESSION\tSTARTED")
	for _, c := range convos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Domain, c.SessionID, formatTime(c.CreatedAt))
	}
	w.Flush()
}

func writeMessages(out io.Writer, msgs []sdk.Message) {
	for _, m := range msgs {
		if m.CreatedAt != nil {
			fmt.Fprintf(out, "[%s] ", m.CreatedAt.Local().Format(time.Kitchen))
		}
		fmt.Fprintf(out, "%s: %s\n", m.Role, m.Text)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
