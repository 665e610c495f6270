package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap"
	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the document tray into review submissions",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.SyncDocuments(ctx)
		if err != nil {
			return errs.Wrap(err, "sync documents")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "sync complete: %d created, %d skipped\n",
			len(result.Created), result.Skipped); err != nil {
			return errs.Wrap(err, "write sync output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
