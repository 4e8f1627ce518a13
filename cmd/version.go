package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/will-rowe/cdbgstream/src/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cdbgstream version",
	Long:  `Print the cdbgstream version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
