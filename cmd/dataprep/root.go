package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dataprep",
	Short: "Prepare JSON and Parquet datasets for sharing",
	Long: `dataprep loads a dataset from a JSON lines file, a URL or a Parquet file,
removes duplicates, adds rank columns, encrypts sensitive columns with per-column
keys, builds inverted indexes and exports the result as JSON, CSV or Parquet.`,

	// Errors are reported once, by Execute.
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
		InitLogging(viper.GetString("log-dir"), viper.GetBool("verbose"), cmd.Name())
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It is called once by main.main(). A command
// error exits with status 1 after the command's deferred cleanup has run.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ErrExit("%v", err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dataprep.yaml)")
	flags.String("log-dir", "", "directory for rotating log files; logs go to stderr when unset")
	flags.Bool("verbose", false, "log info messages to stderr as well as warnings")
	flags.String("key-dir", ".", "directory column keys are saved to and restored from")
	flags.Int("compression-threshold", 1024, "minimum cell size in bytes before compression is attempted")
	flags.Bool("no-compression", false, "never compress cells before encryption")

	for _, name := range []string{"log-dir", "verbose", "key-dir", "compression-threshold", "no-compression"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dataprep")
	}

	// DATAPREP_KEY_DIR and friends
	viper.SetEnvPrefix("dataprep")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
