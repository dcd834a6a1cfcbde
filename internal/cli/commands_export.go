package cli

import (
	"fmt"
	"time"

	"store-feedback/internal/excel"
	"store-feedback/internal/storage"

	"github.com/spf13/cobra"
)

func newExportCommand(deps Dependencies) *cobra.Command {
	var (
		outPath string
		dbPath  string
		storeID string
		since   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored reviews to a spreadsheet.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := storage.ReviewFilter{StoreID: storeID}
			if since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return usageError("--since must be an RFC 3339 timestamp")
				}
				filter.Since = t
			}

			db, err := storage.NewSQLiteAdapter(dbPath)
			if err != nil {
				return fmt.Errorf("open review database: %w", err)
			}
			defer db.Close()

			list, err := db.ListReviews(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := excel.WriteReviews(outPath, list, excel.ReviewsSheet); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d reviews to %s\n", len(list), outPath)
			return err
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "reviews.xlsx", "Destination spreadsheet.")
	cmd.Flags().StringVar(&dbPath, "db", deps.Config.DBPath, "SQLite database path (FEEDBACK_DB).")
	cmd.Flags().StringVar(&storeID, "store", "", "Only export reviews for this store id.")
	cmd.Flags().StringVar(&since, "since", "", "Only export reviews received at or after this time.")
	return cmd
}
