package main

import (
	"fmt"

	"github.com/Tendo1904/mas-lab"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "maslab v%s\n", maslab.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
