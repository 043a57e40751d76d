package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai8future/dataprep"
	"github.com/ai8future/dataprep/table"
)

var processSource sourceFlags

var (
	dedupeColumns    []string
	rankSpecs        []string
	anonymizeColumns []string
	saveKeys         bool
	restoreSpecs     []string
	decryptColumns   []string
	rekeySpecs       []string
	outputName       string
	outputFormats    []string
	keysOut          string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Clean, rank, anonymize or decrypt a dataset and export it",
	Long: `Load a dataset, apply the requested steps and export the result.

Steps run in this order: restore keys, remove duplicates, add ranks, decrypt,
rekey, anonymize. Each step runs once per flag value, in flag order.`,
	Example: `  dataprep process --file users.json --dedupe id --rank score:score_rank:team \
    --anonymize email --save-keys --output users_anon --format json,parquet`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		if outputName == "" {
			return errors.New(`required flag "output" not set`)
		}
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		formats, err := table.ParseFormats(outputFormats...)
		if err != nil {
			return fmt.Errorf("--format: %w", err)
		}
		if saveKeys || len(rekeySpecs) > 0 {
			unlock, err := lockKeyDir()
			if err != nil {
				return err
			}
			defer unlock()
		}
		p, err := loadDataset(cmd.Context(), processSource.source())
		if err != nil {
			return err
		}
		defer p.Close()

		if err := runProcessSteps(p); err != nil {
			return err
		}

		written, err := p.Save(outputName, formats)
		displayWrittenFiles(written)
		if err != nil {
			return fmt.Errorf("export dataset: %w", err)
		}

		if keysOut != "" {
			if err := p.ExportKeys(keysOut); err != nil {
				return fmt.Errorf("export keys: %w", err)
			}
			PrintAndLog("Encryption keys written to %s", keysOut)
		} else if len(anonymizeColumns) > 0 && !saveKeys {
			Warn("Keys of %v were not saved; the anonymized columns can no longer be decrypted.", anonymizeColumns)
		}
		return nil
	},
}

// runProcessSteps applies the steps selected by flags, stopping at the first
// error.
func runProcessSteps(p *dataprep.Preprocessor) error {
	for _, spec := range restoreSpecs {
		anonName, keyName := splitKeySpec(spec)
		if err := p.RestoreKey(anonName, keyName); err != nil {
			return fmt.Errorf("restore key for %q: %w", anonName, err)
		}
	}
	for _, column := range dedupeColumns {
		n, err := p.RemoveDuplicates(column)
		if err != nil {
			return fmt.Errorf("remove duplicates: %w", err)
		}
		PrintAndLog("Removed %d duplicate rows by %q", n, column)
	}
	for _, spec := range rankSpecs {
		r, err := parseRankSpec(spec)
		if err != nil {
			return fmt.Errorf("--rank: %w", err)
		}
		if err := p.AddRank(r.column, r.newColumn, r.groupBy); err != nil {
			return fmt.Errorf("rank %q: %w", r.column, err)
		}
	}
	for _, column := range decryptColumns {
		if err := p.DecryptColumn(column); err != nil {
			return fmt.Errorf("decrypt %q: %w", column, err)
		}
	}
	for _, spec := range rekeySpecs {
		anonName, keyName := splitKeySpec(spec)
		if err := p.RekeyColumn(anonName, keyName); err != nil {
			return fmt.Errorf("rekey %q: %w", anonName, err)
		}
	}
	for _, column := range anonymizeColumns {
		keyName := ""
		if saveKeys {
			keyName = column
		}
		if err := p.AnonymizeColumn(column, keyName); err != nil {
			return fmt.Errorf("anonymize %q: %w", column, err)
		}
		PrintAndLog("Anonymized %q as %q", column, dataprep.AnonymizedName(column))
	}
	return nil
}

type rankSpec struct {
	column    string
	newColumn string
	groupBy   string
}

// parseRankSpec parses "column:newColumn[:groupBy]".
func parseRankSpec(s string) (rankSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return rankSpec{}, fmt.Errorf("invalid rank %q, want column:newColumn[:groupBy]", s)
	}
	r := rankSpec{column: parts[0], newColumn: parts[1]}
	if len(parts) == 3 {
		r.groupBy = parts[2]
	}
	return r, nil
}

// splitKeySpec parses "anonColumn[:keyName]". Without a key name the key is
// named after the plain column.
func splitKeySpec(s string) (anonName, keyName string) {
	anonName, keyName, found := strings.Cut(s, ":")
	if !found {
		keyName = strings.TrimSuffix(anonName, dataprep.AnonymizedSuffix)
	}
	return anonName, keyName
}

func init() {
	rootCmd.AddCommand(processCmd)
	processSource.register(processCmd)

	f := processCmd.Flags()
	f.StringSliceVar(&dedupeColumns, "dedupe", nil, "remove rows repeating an earlier value of this column")
	f.StringSliceVar(&rankSpecs, "rank", nil, "add a descending rank column: column:newColumn[:groupBy]")
	f.StringSliceVar(&anonymizeColumns, "anonymize", nil, "encrypt this column under a fresh key")
	f.BoolVar(&saveKeys, "save-keys", false, "save each new key to <key-dir>/<column>.key")
	f.StringSliceVar(&restoreSpecs, "restore-key", nil, "register a saved key: anonColumn[:keyName]")
	f.StringSliceVar(&decryptColumns, "decrypt", nil, "decrypt this anonymized column")
	f.StringSliceVar(&rekeySpecs, "rekey", nil, "re-encrypt an anonymized column under a fresh key: anonColumn[:keyName]")
	f.StringVarP(&outputName, "output", "o", "", "output file name without extension (required)")
	f.StringSliceVar(&outputFormats, "format", []string{"json"}, "output formats: json, csv, parquet")
	f.StringVar(&keysOut, "keys-out", "", "write all encryption keys as JSON to this file")
}
