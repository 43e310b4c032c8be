package commands

import (
	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/spf13/cobra"
)

// Loader builds the bridge on demand so commands that need no store stay cheap
type Loader func(verbose bool) (*app.Bridge, error)

// NewRootCmd creates the ofctl command tree
func NewRootCmd(version string, load Loader) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "ofctl",
		Short:         "Command-line front for the OmniFocus bridge",
		Long:          "Run bridge operations, inspect the operation catalog and manage the installed automation scripts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log automation calls to stderr")

	loadBridge := func() (*app.Bridge, error) {
		return load(verbose)
	}

	rootCmd.AddCommand(NewToolsCmd(loadBridge))
	rootCmd.AddCommand(NewCallCmd(loadBridge))
	rootCmd.AddCommand(NewScriptsCmd())
	rootCmd.AddCommand(NewTestCmd(loadBridge))
	return rootCmd
}
