package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the content table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "content table is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
