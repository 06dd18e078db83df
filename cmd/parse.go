package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/metal-toolbox/xapictl/internal/command"
	"github.com/spf13/cobra"
)

var parseCommand string

var cmdParse = &cobra.Command{
	Use:   "parse --command COMMAND",
	Short: "Print the command name and arguments parsed from a command string, nothing is sent",
	Run: func(_ *cobra.Command, _ []string) {
		cmd, err := command.Parse(parseCommand)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Printf("command: %s\n", cmd.Name)

		if args := cmd.ArgumentsJSON(); args != "" {
			fmt.Printf("arguments: %s\n", args)
		}
	},
}

func init() {
	cmdParse.Flags().StringVar(&parseCommand, "command", "", "xAPI command with optional arguments, as JSON or key:value pairs")

	if err := cmdParse.MarkFlagRequired("command"); err != nil {
		log.Fatal(err)
	}

	rootCmd.AddCommand(cmdParse)
}
