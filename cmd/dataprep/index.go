package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai8future/dataprep"
)

var (
	indexSource    sourceFlags
	indexKey       string
	indexValue     string
	indexOutput    string
	indexParquet   bool
	indexNormalize string
)

var normalizers = map[string]dataprep.Normalizer{
	"none":     dataprep.NormalizeNone,
	"trim":     dataprep.NormalizeTrim,
	"lower":    dataprep.NormalizeLower,
	"caseless": dataprep.NormalizeCaseless,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build an inverted index of one column by another",
	Long: `Group the values of --value under each distinct value of --key and write the
index to <output>.json, and to <output>.parquet with --parquet.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		normalize, ok := normalizers[indexNormalize]
		if !ok {
			return fmt.Errorf("--normalize: unknown normalizer %q", indexNormalize)
		}
		p, err := loadDataset(cmd.Context(), indexSource.source())
		if err != nil {
			return err
		}
		defer p.Close()

		ix, err := p.InvertedIndex(indexKey, indexValue, indexOutput, indexParquet, dataprep.WithKeyNormalizer(normalize))
		if err != nil {
			return fmt.Errorf("build inverted index: %w", err)
		}
		fmt.Printf("%d distinct keys in %q\n", ix.Len(), indexKey)
		paths := []string{indexOutput + ".json"}
		if indexParquet {
			paths = append(paths, indexOutput+".parquet")
		}
		displayWrittenFiles(paths)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexSource.register(indexCmd)

	f := indexCmd.Flags()
	f.StringVar(&indexKey, "key", "", "column whose values become index keys (required)")
	f.StringVar(&indexValue, "value", "", "column whose values are collected (required)")
	f.StringVarP(&indexOutput, "output", "o", "index", "output file name without extension")
	f.BoolVar(&indexParquet, "parquet", false, "also write the index as Parquet")
	f.StringVar(&indexNormalize, "normalize", "none", "key normalization: none, trim, lower, caseless")
	indexCmd.MarkFlagRequired("key")
	indexCmd.MarkFlagRequired("value")
}
