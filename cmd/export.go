package cmd

import (
	"fmt"

	"github.com/emicklei/dot"
	"github.com/metal-toolbox/xapictl/internal/runner"
	"github.com/spf13/cobra"
)

type exportFlags struct {
	mermaid bool
}

var (
	exportFlagSet = &exportFlags{}
)

var cmdExportFlow = &cobra.Command{
	Use:   "export-flow [--mermaid]",
	Short: "Export the run flow as a graphviz dot graph, or in the mermaid format",
	Run: func(_ *cobra.Command, _ []string) {
		g := runner.Graph()

		if exportFlagSet.mermaid {
			fmt.Println(dot.MermaidGraph(g, dot.MermaidTopDown))
			return
		}

		fmt.Println(g.String())
	},
}

func init() {
	cmdExportFlow.PersistentFlags().BoolVarP(&exportFlagSet.mermaid, "mermaid", "", false, "export the run flow in the mermaid format")

	rootCmd.AddCommand(cmdExportFlow)
}
