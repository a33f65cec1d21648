package main

import (
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	mediadata "github.com/lk2023060901/media-attached-filter/internal/media/data"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/validator"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <title>",
	Short: "Show the parent a typed title filters the media list to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		title := validator.SanitizeText(args[0])
		if title.Empty() {
			return fmt.Errorf("title is empty after sanitising")
		}

		filter := biz.NewAttachmentFilter(mediadata.NewContentRepo(db), cfg.Media.ParamName, log)
		outcome, err := filter.Resolve(cmd.Context(), title.String())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s post_parent=%d\n", outcome, outcome.ParentID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
