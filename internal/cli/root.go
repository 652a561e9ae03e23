// Package cli implements the measure command-line tool.
package cli

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tracelab/measure/logging"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "measure",
		Short: "A command-line utility for working with recorded metrics.",
		Long: `measure is a command-line utility for working with the metric logs
produced by instrumented training runs.

Use 'measure dump' to print a metrics log, 'measure plot' to render metrics
to image files, and 'measure demo' to run a synthetic training loop that
exercises the full reporting stack.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLogLevel(viper.GetString("log-level"))
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.measure.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "sets the log level (debug, info, warn, error)")
	cobra.CheckErr(viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigName(".measure")
	}

	viper.SetEnvPrefix("measure")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
