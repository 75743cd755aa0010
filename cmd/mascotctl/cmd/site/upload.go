package site

import (
	"fmt"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/cmd/cmdutil"
	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/router"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file> [file...]",
	Short: "Upload knowledge documents for a site",
	Long:  fmt.Sprintf(`Uploads up to %d documents that the assistant may draw on when answering visitors.`, sdk.MaxUploadFiles),
	Args:  cobra.RangeArgs(1, sdk.MaxUploadFiles),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := targetSite()
		if err != nil {
			return err
		}

		files, closeAll, err := cmdutil.OpenUploads(args)
		if err != nil {
			return err
		}
		defer closeAll()

		c, ctx, cancel, err := cmdutil.SDKClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		if err := c.UploadSiteDocs(ctx, siteID, files); err != nil {
			return fmt.Errorf("failed to upload documents for site %s: %w", siteID, router.Explain(err))
		}

		pterm.Success.Printf("Uploaded %d document(s) to site %s\n", len(files), siteID)
		return nil
	},
}
