package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wenzapen/trowel/cmd/scrape"
	"github.com/wenzapen/trowel/cmd/test"
	"github.com/wenzapen/trowel/version"

	_ "github.com/wenzapen/trowel/parse/books"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version",
	Long:  "print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer()
	},
}

func Execute() {
	var rootCmd = &cobra.Command{Use: "trowel"}
	rootCmd.AddCommand(scrape.Cmd, test.Cmd, versionCmd)
	rootCmd.Execute()
}
