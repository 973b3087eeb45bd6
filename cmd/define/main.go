package main

import (
	"fmt"
	"os"

	"github.com/dostiep/360i/cmd/define/generate"
	"github.com/spf13/cobra"
)

var buildVersion string

var mainCmd = &cobra.Command{
	Use: "define-template",

	Short: "Commands for generating define templates from USDM study documents.",

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use: "version",

	Short: "Prints the version of the program.",

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%s\n", buildVersion)
	},
}

func main() {
	mainCmd.AddCommand(versionCmd)
	mainCmd.AddCommand(generate.Cmd)
	mainCmd.AddCommand(summaryCmd)
	mainCmd.AddCommand(queryCmd)

	mainCmd.Execute()
}
