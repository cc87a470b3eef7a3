package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinder/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("cinder", version.Version)
		if version.GitCommit != "" {
			fmt.Println("commit:", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Println("built:", version.BuildDate)
		}
	},
}
