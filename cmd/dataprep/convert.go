package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai8future/dataprep"
)

var convertCmd = &cobra.Command{
	Use:   "convert <json-file> <output-name>",
	Short: "Convert a JSON lines file to Parquet",
	Args:  cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dataprep.JSONToParquet(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("convert %s: %w", args[0], err)
		}
		displayWrittenFiles([]string{path})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
