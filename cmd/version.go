package cmd

import (
	"fmt"

	"github.com/metal-toolbox/xapictl/internal/version"
	"github.com/spf13/cobra"
)

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "Print xapictl version along with build information.",
	Run: func(_ *cobra.Command, args []string) {
		v := version.Current()

		fmt.Printf(
			"commit: %s\nbranch: %s\ngit summary: %s\nbuildDate: %s\nversion: %s\nGo version: %s\nUser-Agent: %s\n",
			v.GitCommit, v.GitBranch, v.GitSummary, v.BuildDate, v.AppVersion, v.GoVersion, version.UserAgent())
	},
}

func init() {
	rootCmd.AddCommand(cmdVersion)
}
