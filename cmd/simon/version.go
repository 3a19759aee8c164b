package main

import (
	"fmt"

	"github.com/cbodonnell/simon/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of simon",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("simon version %s\n", version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
