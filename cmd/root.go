package cmd

import (
	"fmt"
	"os"

	"github.com/metal-toolbox/xapictl/internal/app"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xapictl",
	Short: "xapictl runs xAPI commands on the collaboration devices carrying a tag",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func appOptions() *app.Options {
	return &app.Options{
		CfgFile:  cfgFile,
		LogLevel: logLevel,
		LogJSON:  logJSON,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file (default is $HOME/.xapictl.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "set logging level - info, debug, trace")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs in the JSON format")
}
