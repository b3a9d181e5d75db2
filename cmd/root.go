package cmd

import (
	"github.com/compozy/changelog/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compozy-changelog",
	Short: "Resolve the changelog of a dependency upgrade",
	Long: `compozy-changelog lists the releases between two versions of a dependency,
links each one to its source comparison and attaches the release notes or
changelog section published upstream.`,
	Version:      version.Summary(),
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
