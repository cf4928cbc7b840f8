package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaming/rawrepair-go/rawfile"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOut {
			return printJSON(map[string]string{"version": rawfile.Version})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rawrepair-go version %s\n", rawfile.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
