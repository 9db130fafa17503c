package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/allerlog/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of allerlog",
	Run: func(cmd *cobra.Command, args []string) {
		buildinfo.PrintBuildData(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
