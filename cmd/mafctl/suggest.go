package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	mediadata "github.com/lk2023060901/media-attached-filter/internal/media/data"
	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <keyword>",
	Short: "Print title suggestions for a keyword",
	Long: `Print the suggestion response the admin screen would receive for the
keyword, as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().Int("limit", 0, "maximum number of suggestions (default from config)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Media.SuggestionLimit
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	uc := biz.NewSuggestionUseCase(mediadata.NewContentRepo(db), limit, log)
	result, err := uc.ResolveSuggestions(cmd.Context(), &args[0])

	var out any
	switch {
	case errors.Is(err, biz.ErrMissingKeyword):
		out = map[string]bool{"success": false}
	case err != nil:
		return err
	default:
		out = types.NewSuggestionResponse(result)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	return nil
}
