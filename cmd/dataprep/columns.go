package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ai8future/dataprep"
	"github.com/ai8future/dataprep/table"
)

var columnsSource sourceFlags

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the columns of a dataset",
	Long:  "List every column of a dataset with the Go types of its cells and its null count. Anonymized columns are marked.",

	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadDataset(cmd.Context(), columnsSource.source())
		if err != nil {
			return err
		}
		defer p.Close()
		displayColumns(p.Data())
		return nil
	},
}

func displayColumns(t *table.Table) {
	ui := uitable.New()
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	ui.AddRow(headerfmt("COLUMN"), headerfmt("TYPES"), headerfmt("NULLS"), headerfmt("ANONYMIZED"))
	for _, name := range t.Columns() {
		values, _ := t.Column(name)
		ui.AddRow(name, cellTypes(values), lo.Count(values, nil), dataprep.HasAnonymizedMarker(name))
	}
	fmt.Printf("%d rows\n%s\n", t.NumRows(), ui)
}

// cellTypes lists the distinct Go types of the non-null cells.
func cellTypes(values []any) string {
	types := lo.Uniq(lo.FilterMap(values, func(v any, _ int) (string, bool) {
		return fmt.Sprintf("%T", v), v != nil
	}))
	if len(types) == 0 {
		return "null"
	}
	return strings.Join(types, "|")
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsSource.register(columnsCmd)
}
