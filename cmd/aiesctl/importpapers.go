package main

import (
	"context"
	"fmt"
	"os"

	catalogstore "github.com/aiesociety/aiesweb/internal/app/store/catalog"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportPapersCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "import-papers FILE",
		Short: "Bulk-import digital library papers from a CSV file",
		Long: `Import papers from a CSV file with the header

  paperTitle,authorName,journalName,volumeIssue,link,image

Every row is checked before anything is written. If any row fails, the
errors are printed and nothing is imported.

Running servers keep serving cached listings until their view cache expires.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			db, disconnect, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer disconnect()

			log := opts.logger()
			defer func() { _ = log.Sync() }()

			repo := catalogstore.New[models.Paper](catalogstore.Deps{DB: db, Log: log})
			n, err := catalogstore.ImportPapers(ctx, repo, f)
			if err != nil {
				return err
			}
			log.Info("papers imported", zap.String("file", args[0]), zap.Int("count", n))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d papers\n", n)
			return nil
		},
	}
}
