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

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run extraction on one document from the tray",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		filename, _ := cmd.Flags().GetString("file")
		result, err := svc.ProcessDocument(ctx, review.ProcessDocumentInput{Filename: filename})
		if err != nil {
			return errs.Wrap(err, "process document")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "processed %s: submission=%s status=%s\n",
			result.Filename, result.SubmissionID, result.Status); err != nil {
			return errs.Wrap(err, "write process output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("file", "", "Document filename in the incoming tray")
	_ = processCmd.MarkFlagRequired("file")
}
