package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/nightlyone/lockfile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ai8future/dataprep"
	"github.com/ai8future/dataprep/table"
)

// sourceFlags are the data source flags shared by every command that loads a
// dataset. Exactly one must be set.
type sourceFlags struct {
	path    string
	url     string
	parquet string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.path, "file", "", "JSON lines file to load")
	cmd.Flags().StringVar(&s.url, "url", "", "URL of a JSON lines document to load")
	cmd.Flags().StringVar(&s.parquet, "parquet-file", "", "Parquet file to load")
	cmd.MarkFlagsMutuallyExclusive("file", "url", "parquet-file")
}

func (s *sourceFlags) source() table.Source {
	return table.Source{Path: s.path, URL: s.url, ParquetPath: s.parquet}
}

func newPreprocessor() (*dataprep.Preprocessor, error) {
	opts := []dataprep.Option{
		dataprep.WithKeyDir(viper.GetString("key-dir")),
		dataprep.WithCompressionThreshold(viper.GetInt("compression-threshold")),
		dataprep.WithLogger(log.StandardLogger()),
	}
	if viper.GetBool("no-compression") {
		opts = append(opts, dataprep.WithCompressionDisabled())
	}
	p, err := dataprep.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return p, nil
}

// loadDataset creates a Preprocessor and imports src into it.
func loadDataset(ctx context.Context, src table.Source) (*dataprep.Preprocessor, error) {
	p, err := newPreprocessor()
	if err != nil {
		return nil, err
	}
	if err := p.Import(ctx, src); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return p, nil
}

// displayWrittenFiles prints a table of the files written and their sizes.
func displayWrittenFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	t := uitable.New()
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	t.AddRow(headerfmt("FILE"), headerfmt("SIZE"))
	for _, path := range paths {
		size := "-"
		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		t.AddRow(filepath.Clean(path), size)
	}
	PrintAndLog("%s", t)
}

// lockKeyDir takes an exclusive lock on the key directory so that two runs do
// not write the same key files. The returned func releases it.
func lockKeyDir() (func(), error) {
	keyDir := viper.GetString("key-dir")
	lockPath, err := filepath.Abs(filepath.Join(keyDir, ".dataprep.lck"))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for lockfile in %q: %w", keyDir, err)
	}
	lock, err := lockfile.New(lockPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create lockfile %q: %w", lockPath, err)
	}
	err = lock.TryLock()
	if errors.Is(err, lockfile.ErrBusy) {
		return nil, fmt.Errorf("another dataprep process is using key directory %s", keyDir)
	} else if err != nil {
		return nil, fmt.Errorf("unable to lock key directory %s: %w", keyDir, err)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			log.Warnf("unable to unlock %s: %v", lockPath, err)
		}
	}, nil
}
