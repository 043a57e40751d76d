package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	duplicatesSource sourceFlags
	duplicatesColumn string
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Count rows that repeat an earlier row's value in a column",

	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadDataset(cmd.Context(), duplicatesSource.source())
		if err != nil {
			return err
		}
		defer p.Close()
		n, err := p.CountDuplicates(duplicatesColumn)
		if err != nil {
			return fmt.Errorf("count duplicates: %w", err)
		}
		fmt.Printf("%d duplicate rows in column %q\n", n, duplicatesColumn)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
	duplicatesSource.register(duplicatesCmd)
	duplicatesCmd.Flags().StringVar(&duplicatesColumn, "column", "", "column to check (required)")
	duplicatesCmd.MarkFlagRequired("column")
}
