package commands

import (
	"fmt"

	"github.com/benvon/omnifocus-bridge/internal/automation"
	"github.com/spf13/cobra"
)

// NewScriptsCmd creates the scripts command with install and show subcommands
func NewScriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Manage the embedded automation scripts",
	}
	cmd.AddCommand(newScriptsInstallCmd())
	cmd.AddCommand(newScriptsShowCmd())
	return cmd
}

func newScriptsInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install [dir]",
		Short: "Write the automation scripts to a directory",
		Long:  "Write the automation scripts to dir, or to the default scripts directory when dir is omitted. Existing scripts are overwritten.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := automation.DefaultScriptsDir()
			if len(args) == 1 {
				dir = args[0]
			}
			if err := automation.InstallScripts(dir); err != nil {
				return fmt.Errorf("install scripts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %d scripts in %s\n", len(automation.Scripts), dir)
			return nil
		},
	}
}

func newScriptsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "show <script>",
		Short:     "Print the source of one script as it is installed",
		Args:      cobra.ExactArgs(1),
		ValidArgs: automation.Scripts,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := automation.Source(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(src)
			return err
		},
	}
}
