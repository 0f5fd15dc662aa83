package main

import (
	"fmt"

	"github.com/spf13/cobra"

	faceparts "github.com/menta2k/face-parts"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("faceparts %s\n", faceparts.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
